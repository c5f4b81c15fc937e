package internal

type Batcher struct {
	// each nested batch increases the depth by 1
	// sync work scheduled while depth > 0 waits for the outermost batch
	depth int

	// lanes scheduled by the batch in progress
	lanes Lanes
}

func NewBatcher() *Batcher {
	return &Batcher{}
}

func (b *Batcher) IsBatching() bool {
	return b.depth > 0
}

func (b *Batcher) Track(lane Lane) {
	if b.depth > 0 {
		b.lanes |= lane
	}
}

// Batch runs fn, then onComplete with the lanes fn scheduled once the
// outermost batch returns, even if fn panics.
func (b *Batcher) Batch(fn func(), onComplete func(Lanes)) {
	b.depth++
	defer func() {
		b.depth--
		if b.depth == 0 {
			lanes := b.lanes
			b.lanes = NoLanes
			if onComplete != nil {
				onComplete(lanes)
			}
		}
	}()

	fn()
}

// Batch groups the updates made by fn. Sync updates are rendered and
// committed once, when the outermost batch returns.
func (r *Runtime) Batch(fn func()) error {
	var err error
	r.ctx.RunWith(batchedContext, func() {
		r.batcher.Batch(fn, func(lanes Lanes) {
			if lanes&SyncLane != 0 && !r.ctx.Working() {
				err = r.flushSyncWork()
			}
		})
	})
	return err
}
