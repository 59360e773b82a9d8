// Package render turns the ECS scene into device calls: per camera a light
// pass with shadow maps, an opaque pass chosen by the camera's render mode,
// then sky and debug overlays.
package render

import (
	"errors"

	"github.com/lumen3d/lumen/internal/component"
)

type (
	BufferID  uint32
	TextureID uint32
	Slot      uint32
)

// BufferKind tells the device how a buffer is bound.
type BufferKind uint8

const (
	ConstantBuffer BufferKind = iota
	StructuredBuffer
)

// CullMode of a raster state.
type CullMode uint8

const (
	CullBack CullMode = iota
	CullNone
	CullFront
)

// RasterState mirrors the fixed-function rasterizer settings a pass needs.
type RasterState struct {
	Cull                 CullMode
	Wireframe            bool
	DepthBias            int32
	SlopeScaledDepthBias float32
	DepthBiasClamp       float32
}

// Device is the GPU collaborator. Bind and draw calls cannot fail;
// resource creation and buffer updates can.
type Device interface {
	BindViewport(v component.Viewport)
	BindRasterState(s RasterState)
	BindVertexShader(name string)
	// BindPixelShader with an empty name disables pixel shading.
	BindPixelShader(name string)
	BindConstantBuffer(slot Slot, id BufferID)
	BindStructuredBuffer(slot Slot, id BufferID)
	BindShaderResource(slot Slot, id TextureID)
	BindTexture(slot Slot, name string)
	BindDepthTarget(id TextureID, slice int)
	BindMesh(resource uint32)

	ClearDepth(id TextureID, slice int)
	Draw(vertexCount, start uint32)
	DrawIndexed(indexCount, start uint32)

	CreateBuffer(kind BufferKind, stride, count int) (BufferID, error)
	CreateDepthAtlas(resolution uint32, slices int) (TextureID, error)
	ReleaseBuffer(id BufferID)
	ReleaseTexture(id TextureID)
	UpdateBuffer(id BufferID, data any) error
}

var ErrDeviceLost = errors.New("render: device lost")
