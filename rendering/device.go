// Package rendering owns the mesh registry, camera and per-frame draw
// planning for the tank viewer. It talks to the GPU only through the
// Device interface; rendering/opengl provides the real implementation.
package rendering

import (
	"errors"
	"io"
	"log"

	"github.com/go-gl/mathgl/mgl32"

	"tankviewer/core"
)

var (
	// ErrInvalidMesh is returned by AddMesh for malformed mesh data.
	ErrInvalidMesh = errors.New("rendering: invalid mesh")
	// ErrDisposed is returned by operations on a disposed renderer.
	ErrDisposed = errors.New("rendering: renderer disposed")
)

// Program is a linked shader program handle
type Program uint32

// Buffer is a GPU buffer handle. Zero means no buffer.
type Buffer uint32

// DrawMode selects filled triangles or wireframe lines
type DrawMode int

const (
	Fill DrawMode = iota
	Wireframe
)

func (m DrawMode) String() string {
	if m == Wireframe {
		return "wireframe"
	}
	return "fill"
}

// MeshBuffers is the GPU side of one registered mesh. Colors, when
// present, is interleaved RGBA where A is the overlay weight.
type MeshBuffers struct {
	Positions  Buffer
	Normals    Buffer
	Indices    Buffer
	Colors     Buffer
	IndexCount int32
	HasColors  bool
}

// FrameUniforms are the values shared by every draw in a frame
type FrameUniforms struct {
	Projection  mgl32.Mat4
	View        mgl32.Mat4
	Model       mgl32.Mat4
	Normal      mgl32.Mat3
	ClipEnabled bool
	ClipPlane   mgl32.Vec4
	LightDir    mgl32.Vec3
	Width       int
	Height      int
}

// DrawCall is one indexed draw of a registered mesh
type DrawCall struct {
	ID              core.MeshID
	Color           core.Color
	Opacity         float64
	UseVertexColors bool
	Mode            DrawMode
	DepthWrite      bool
}

// Device is the graphics backend. Every buffer returned by a Create
// call is released by exactly one DeleteBuffer call from the renderer.
type Device interface {
	CompileProgram(vertexSrc, fragmentSrc string) (Program, error)
	DeleteProgram(p Program)
	CreateArrayBuffer(data []float32) Buffer
	CreateIndexBuffer(data []uint32) Buffer
	DeleteBuffer(b Buffer)
	FramebufferSize() (width, height int)
	BeginFrame(p Program, u FrameUniforms)
	Draw(p Program, b MeshBuffers, call DrawCall)
	EndFrame()
}

var logger = log.New(io.Discard, "rendering: ", log.LstdFlags)

// SetLogger directs renderer diagnostics to l. A nil logger silences them.
func SetLogger(l *log.Logger) {
	if l == nil {
		l = log.New(io.Discard, "", 0)
	}
	logger = l
}
