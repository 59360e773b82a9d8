package render

import (
	"fmt"
	"reflect"
)

// dynamicBuffer is a device buffer of T that grows to fit the data it is
// given. It never shrinks.
type dynamicBuffer[T any] struct {
	kind     BufferKind
	id       BufferID
	capacity int
}

func newDynamicBuffer[T any](kind BufferKind) *dynamicBuffer[T] {
	return &dynamicBuffer[T]{kind: kind}
}

func (b *dynamicBuffer[T]) ID() BufferID { return b.id }

// Update uploads data, recreating the buffer when it is too small. An
// empty slice still leaves a valid one-element buffer to bind.
func (b *dynamicBuffer[T]) Update(dev Device, data []T) error {
	if b.id == 0 || len(data) > b.capacity {
		size := max(len(data), 1)
		if b.capacity > 0 {
			size = max(size, 2*b.capacity)
		}
		stride := int(reflect.TypeOf((*T)(nil)).Elem().Size())
		id, err := dev.CreateBuffer(b.kind, stride, size)
		if err != nil {
			return fmt.Errorf("create buffer of %d %s: %w", size, reflect.TypeOf((*T)(nil)).Elem(), err)
		}
		if b.id != 0 {
			dev.ReleaseBuffer(b.id)
		}
		b.id = id
		b.capacity = size
	}
	return dev.UpdateBuffer(b.id, data)
}

// constantBuffer is a single-value device buffer.
type constantBuffer[T any] struct {
	id BufferID
}

func (b *constantBuffer[T]) ID() BufferID { return b.id }

func (b *constantBuffer[T]) Update(dev Device, v T) error {
	if b.id == 0 {
		stride := int(reflect.TypeOf((*T)(nil)).Elem().Size())
		id, err := dev.CreateBuffer(ConstantBuffer, stride, 1)
		if err != nil {
			return fmt.Errorf("create constant buffer %s: %w", reflect.TypeOf((*T)(nil)).Elem(), err)
		}
		b.id = id
	}
	return dev.UpdateBuffer(b.id, v)
}
