package ecs

// ForEach2 iterates over entities that have both component A and B.
// It iterates over the smaller pool and checks the larger one.
func ForEach2[A, B any](w *ECS, fn func(Handle, *A, *B)) {
	pa := PoolOf[A](w.Components, false)
	pb := PoolOf[B](w.Components, false)
	if pa == nil || pb == nil {
		return
	}
	if pa.Len() <= pb.Len() {
		pa.EachReverse(func(h Handle, a *A) {
			if b, ok := pb.Get(h); ok {
				fn(h, a, b)
			}
		})
		return
	}
	pb.EachReverse(func(h Handle, b *B) {
		if a, ok := pa.Get(h); ok {
			fn(h, a, b)
		}
	})
}

// ForEach3 iterates over entities that have components A, B, and C.
func ForEach3[A, B, C any](w *ECS, fn func(Handle, *A, *B, *C)) {
	pc := PoolOf[C](w.Components, false)
	if pc == nil {
		return
	}
	ForEach2(w, func(h Handle, a *A, b *B) {
		if c, ok := pc.Get(h); ok {
			fn(h, a, b, c)
		}
	})
}

// Query returns the entities owning both A and B, in iteration order.
func Query[A, B any](w *ECS) []Handle {
	var out []Handle
	ForEach2(w, func(h Handle, _ *A, _ *B) {
		out = append(out, h)
	})
	return out
}
