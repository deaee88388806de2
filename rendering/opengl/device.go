// Package opengl implements the renderer's Device on OpenGL 4.1 core
// with a GLFW window.
package opengl

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"tankviewer/rendering"
	"tankviewer/rendering/shaders"
)

// ErrContext reports that no usable OpenGL context could be created.
var ErrContext = errors.New("opengl: no graphics context")

// Device issues the renderer's GL calls. It must be used on the thread
// that owns the context.
type Device struct {
	vao       uint32
	uniforms  map[rendering.Program]map[string]int32
	swap      func()
	size      func() (int, int)
	clearRGBA [4]float32
}

// NewDevice loads the GL entry points for the current context. swap
// presents a finished frame; size reports the framebuffer in pixels.
func NewDevice(swap func(), size func() (int, int)) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContext, err)
	}

	// Print OpenGL info
	version := gl.GoStr(gl.GetString(gl.VERSION))
	fmt.Println("OpenGL version:", version)

	d := &Device{
		uniforms:  make(map[rendering.Program]map[string]int32),
		swap:      swap,
		size:      size,
		clearRGBA: [4]float32{0.08, 0.09, 0.11, 1},
	}
	gl.GenVertexArrays(1, &d.vao)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	return d, nil
}

// CompileProgram builds the mesh program and caches its uniform locations.
func (d *Device) CompileProgram(vertexSrc, fragmentSrc string) (rendering.Program, error) {
	program, err := buildProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return 0, err
	}
	p := rendering.Program(program)
	locs := make(map[string]int32, len(shaders.Uniforms))
	for _, name := range shaders.Uniforms {
		locs[name] = gl.GetUniformLocation(program, gl.Str(name+"\x00"))
		if locs[name] < 0 {
			fmt.Printf("WARNING: %s uniform not found in shader!\n", name)
		}
	}
	d.uniforms[p] = locs
	return p, nil
}

// DeleteProgram releases a program.
func (d *Device) DeleteProgram(p rendering.Program) {
	delete(d.uniforms, p)
	gl.DeleteProgram(uint32(p))
}

// CreateArrayBuffer uploads vertex data.
func (d *Device) CreateArrayBuffer(data []float32) rendering.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	gl.BindBuffer(gl.ARRAY_BUFFER, b)
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return rendering.Buffer(b)
}

// CreateIndexBuffer uploads 32-bit triangle indices.
func (d *Device) CreateIndexBuffer(data []uint32) rendering.Buffer {
	var b uint32
	gl.GenBuffers(1, &b)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b)
	if len(data) > 0 {
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	return rendering.Buffer(b)
}

// DeleteBuffer releases a buffer.
func (d *Device) DeleteBuffer(b rendering.Buffer) {
	id := uint32(b)
	gl.DeleteBuffers(1, &id)
}

// FramebufferSize returns the drawable size in pixels.
func (d *Device) FramebufferSize() (int, int) {
	return d.size()
}

// BeginFrame clears the target and uploads the shared uniforms.
func (d *Device) BeginFrame(p rendering.Program, u rendering.FrameUniforms) {
	gl.Viewport(0, 0, int32(u.Width), int32(u.Height))
	gl.ClearColor(d.clearRGBA[0], d.clearRGBA[1], d.clearRGBA[2], d.clearRGBA[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(uint32(p))
	gl.BindVertexArray(d.vao)

	// Set uniforms
	locs := d.uniforms[p]
	gl.UniformMatrix4fv(locs["uProjection"], 1, false, &u.Projection[0])
	gl.UniformMatrix4fv(locs["uView"], 1, false, &u.View[0])
	gl.UniformMatrix4fv(locs["uModel"], 1, false, &u.Model[0])
	gl.UniformMatrix3fv(locs["uNormalMatrix"], 1, false, &u.Normal[0])
	gl.Uniform3fv(locs["uLightDir"], 1, &u.LightDir[0])
	gl.Uniform4fv(locs["uClipPlane"], 1, &u.ClipPlane[0])
	gl.Uniform1i(locs["uClipEnabled"], boolInt(u.ClipEnabled))
}

// Draw binds the mesh buffers and issues one indexed draw.
func (d *Device) Draw(p rendering.Program, b rendering.MeshBuffers, call rendering.DrawCall) {
	locs := d.uniforms[p]
	gl.Uniform3f(locs["uBaseColor"], call.Color[0], call.Color[1], call.Color[2])
	gl.Uniform1f(locs["uOpacity"], float32(call.Opacity))
	gl.Uniform1i(locs["uUseVertexColors"], boolInt(call.UseVertexColors && b.HasColors))

	bindAttribute(shaders.PositionLocation, b.Positions, 3)
	bindAttribute(shaders.NormalLocation, b.Normals, 3)
	if b.HasColors {
		bindAttribute(shaders.ColorLocation, b.Colors, 4)
	} else {
		gl.DisableVertexAttribArray(shaders.ColorLocation)
		gl.VertexAttrib4f(shaders.ColorLocation, 0, 0, 0, 0)
	}
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(b.Indices))

	if call.Mode == rendering.Wireframe {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	} else {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	}
	gl.DepthMask(call.DepthWrite)

	gl.DrawElements(gl.TRIANGLES, b.IndexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))

	// Check for errors after draw
	if err := gl.GetError(); err != gl.NO_ERROR {
		fmt.Printf("OpenGL error after draw of %s: 0x%x\n", call.ID, err)
	}
}

// EndFrame restores default state so nothing stays bound between
// frames, then presents.
func (d *Device) EndFrame() {
	gl.DepthMask(true)
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, 0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
	gl.UseProgram(0)
	gl.Disable(gl.BLEND)
	if d.swap != nil {
		d.swap()
	}
}

// Release deletes the shared vertex array.
func (d *Device) Release() {
	if d.vao != 0 {
		gl.DeleteVertexArrays(1, &d.vao)
		d.vao = 0
	}
}

func bindAttribute(location uint32, b rendering.Buffer, size int32) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(b))
	gl.EnableVertexAttribArray(location)
	gl.VertexAttribPointer(location, size, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
