package render

import (
	"fmt"

	"github.com/lumen3d/lumen/internal/component"
)

// Op names a recorded device call.
type Op string

const (
	OpBindViewport         Op = "bind_viewport"
	OpBindRasterState      Op = "bind_raster_state"
	OpBindVertexShader     Op = "bind_vs"
	OpBindPixelShader      Op = "bind_ps"
	OpBindConstantBuffer   Op = "bind_cb"
	OpBindStructuredBuffer Op = "bind_sb"
	OpBindShaderResource   Op = "bind_srv"
	OpBindTexture          Op = "bind_texture"
	OpBindDepthTarget      Op = "bind_dsv"
	OpBindMesh             Op = "bind_mesh"
	OpClearDepth           Op = "clear_depth"
	OpDraw                 Op = "draw"
	OpDrawIndexed          Op = "draw_indexed"
	OpCreateBuffer         Op = "create_buffer"
	OpCreateDepthAtlas     Op = "create_depth_atlas"
	OpReleaseBuffer        Op = "release_buffer"
	OpReleaseTexture       Op = "release_texture"
	OpUpdateBuffer         Op = "update_buffer"
)

// Command is one recorded call. Only the fields the op uses are set.
type Command struct {
	Op       Op
	Slot     Slot
	ID       uint32
	Slice    int
	Count    uint32
	Start    uint32
	Name     string
	Viewport component.Viewport
	Raster   RasterState
	Data     any
}

func (c Command) String() string {
	switch c.Op {
	case OpBindVertexShader, OpBindPixelShader:
		return fmt.Sprintf("%s %q", c.Op, c.Name)
	case OpBindDepthTarget, OpClearDepth:
		return fmt.Sprintf("%s %d[%d]", c.Op, c.ID, c.Slice)
	case OpDraw, OpDrawIndexed:
		return fmt.Sprintf("%s %d@%d", c.Op, c.Count, c.Start)
	default:
		return fmt.Sprintf("%s slot=%d id=%d", c.Op, c.Slot, c.ID)
	}
}

// Recorder is a headless Device that keeps every call in order.
// Setting FailCreate makes resource creation return that error.
type Recorder struct {
	Commands   []Command
	FailCreate error

	nextBuffer  BufferID
	nextTexture TextureID
	buffers     map[BufferID]int
	atlases     map[TextureID]int
}

func NewRecorder() *Recorder {
	return &Recorder{
		buffers: make(map[BufferID]int),
		atlases: make(map[TextureID]int),
	}
}

func (r *Recorder) record(c Command) { r.Commands = append(r.Commands, c) }

func (r *Recorder) BindViewport(v component.Viewport) {
	r.record(Command{Op: OpBindViewport, Viewport: v})
}

func (r *Recorder) BindRasterState(s RasterState) {
	r.record(Command{Op: OpBindRasterState, Raster: s})
}

func (r *Recorder) BindVertexShader(name string) {
	r.record(Command{Op: OpBindVertexShader, Name: name})
}

func (r *Recorder) BindPixelShader(name string) {
	r.record(Command{Op: OpBindPixelShader, Name: name})
}

func (r *Recorder) BindConstantBuffer(slot Slot, id BufferID) {
	r.record(Command{Op: OpBindConstantBuffer, Slot: slot, ID: uint32(id)})
}

func (r *Recorder) BindStructuredBuffer(slot Slot, id BufferID) {
	r.record(Command{Op: OpBindStructuredBuffer, Slot: slot, ID: uint32(id)})
}

func (r *Recorder) BindShaderResource(slot Slot, id TextureID) {
	r.record(Command{Op: OpBindShaderResource, Slot: slot, ID: uint32(id)})
}

func (r *Recorder) BindTexture(slot Slot, name string) {
	r.record(Command{Op: OpBindTexture, Slot: slot, Name: name})
}

func (r *Recorder) BindDepthTarget(id TextureID, slice int) {
	r.record(Command{Op: OpBindDepthTarget, ID: uint32(id), Slice: slice})
}

func (r *Recorder) BindMesh(resource uint32) {
	r.record(Command{Op: OpBindMesh, ID: resource})
}

func (r *Recorder) ClearDepth(id TextureID, slice int) {
	r.record(Command{Op: OpClearDepth, ID: uint32(id), Slice: slice})
}

func (r *Recorder) Draw(vertexCount, start uint32) {
	r.record(Command{Op: OpDraw, Count: vertexCount, Start: start})
}

func (r *Recorder) DrawIndexed(indexCount, start uint32) {
	r.record(Command{Op: OpDrawIndexed, Count: indexCount, Start: start})
}

func (r *Recorder) CreateBuffer(kind BufferKind, stride, count int) (BufferID, error) {
	if r.FailCreate != nil {
		return 0, r.FailCreate
	}
	r.nextBuffer++
	r.buffers[r.nextBuffer] = count
	r.record(Command{Op: OpCreateBuffer, ID: uint32(r.nextBuffer), Slot: Slot(kind), Count: uint32(count)})
	return r.nextBuffer, nil
}

func (r *Recorder) CreateDepthAtlas(resolution uint32, slices int) (TextureID, error) {
	if r.FailCreate != nil {
		return 0, r.FailCreate
	}
	r.nextTexture++
	r.atlases[r.nextTexture] = slices
	r.record(Command{Op: OpCreateDepthAtlas, ID: uint32(r.nextTexture), Count: resolution, Slice: slices})
	return r.nextTexture, nil
}

func (r *Recorder) ReleaseBuffer(id BufferID) {
	delete(r.buffers, id)
	r.record(Command{Op: OpReleaseBuffer, ID: uint32(id)})
}

func (r *Recorder) ReleaseTexture(id TextureID) {
	delete(r.atlases, id)
	r.record(Command{Op: OpReleaseTexture, ID: uint32(id)})
}

func (r *Recorder) UpdateBuffer(id BufferID, data any) error {
	if _, ok := r.buffers[id]; !ok {
		return fmt.Errorf("update buffer %d: %w", id, ErrDeviceLost)
	}
	r.record(Command{Op: OpUpdateBuffer, ID: uint32(id), Data: data})
	return nil
}

// BufferLen returns the element count of a live buffer.
func (r *Recorder) BufferLen(id BufferID) (int, bool) {
	n, ok := r.buffers[id]
	return n, ok
}

// Slices returns the slice count of a live depth atlas.
func (r *Recorder) Slices(id TextureID) (int, bool) {
	n, ok := r.atlases[id]
	return n, ok
}

// Count returns how many recorded commands have the given op.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded commands with one of the given ops.
func (r *Recorder) Filter(ops ...Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		for _, op := range ops {
			if c.Op == op {
				out = append(out, c)
				break
			}
		}
	}
	return out
}

// Reset drops the recorded commands but keeps resource ids.
func (r *Recorder) Reset() { r.Commands = r.Commands[:0] }
