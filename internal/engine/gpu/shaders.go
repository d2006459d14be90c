package gpu

const packVertexShader = `
#version 410 core
layout(location = 0) in vec2 aPos;

uniform mat4 uModelView;
uniform mat4 uProjection;

void main() {
    gl_Position = uProjection * uModelView * vec4(aPos, 0.0, 1.0);
}
`

// The fragment shader fetches texels by integer coordinate so the
// viewport-to-texel mapping is exact.
const packFragmentShader = `
#version 410 core
uniform sampler2D uColor;
uniform sampler2D uRoughness;

out vec4 FragColor;

void main() {
    ivec2 p = ivec2(gl_FragCoord.xy);
    vec4 color = texelFetch(uColor, p, 0);
    float rough = texelFetch(uRoughness, p, 0).r;
    FragColor = vec4(color.rgb, 1.0 - rough);
}
`
