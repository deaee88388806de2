// Package shaders holds the GLSL sources for the mesh program.
package shaders

// Attribute locations shared with the device.
const (
	PositionLocation = 0
	NormalLocation   = 1
	ColorLocation    = 2
)

// Vertex transforms mesh positions by the shared model matrix and passes
// the world position on for the clip test.
const Vertex = `
#version 410 core

layout(location = 0) in vec3 aPosition;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec4 aColor;

uniform mat4 uProjection;
uniform mat4 uView;
uniform mat4 uModel;
uniform mat3 uNormalMatrix;

out vec3 vWorldPos;
out vec3 vNormal;
out vec4 vColor;

void main() {
    vec4 world = uModel * vec4(aPosition, 1.0);
    vWorldPos = world.xyz;
    vNormal = uNormalMatrix * aNormal;
    vColor = aColor;
    gl_Position = uProjection * uView * world;
}
`

// Fragment discards the clipped half-space, blends the stress overlay
// over the base color by its weight, and applies a Lambert term.
const Fragment = `
#version 410 core

in vec3 vWorldPos;
in vec3 vNormal;
in vec4 vColor;

uniform vec3 uBaseColor;
uniform float uOpacity;
uniform bool uUseVertexColors;
uniform bool uClipEnabled;
uniform vec4 uClipPlane;
uniform vec3 uLightDir;

out vec4 fragColor;

void main() {
    if (uClipEnabled && dot(vWorldPos, uClipPlane.xyz) + uClipPlane.w < 0.0) {
        discard;
    }

    vec3 base = uBaseColor;
    if (uUseVertexColors) {
        base = mix(uBaseColor, vColor.rgb, clamp(vColor.a, 0.0, 1.0));
    }

    // cut-away views show back faces
    vec3 n = normalize(vNormal);
    if (!gl_FrontFacing) {
        n = -n;
    }
    float diffuse = max(dot(n, normalize(uLightDir)), 0.0);

    fragColor = vec4(base * (0.3 + 0.7 * diffuse), uOpacity);
}
`

// Uniform names looked up by the device.
var Uniforms = []string{
	"uProjection",
	"uView",
	"uModel",
	"uNormalMatrix",
	"uBaseColor",
	"uOpacity",
	"uUseVertexColors",
	"uClipEnabled",
	"uClipPlane",
	"uLightDir",
}
