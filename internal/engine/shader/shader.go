// Package shader provides OpenGL shader compilation utilities.
package shader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/midgard-assets/internal/logger"
)

// Shader errors.
var (
	ErrSource  = errors.New("reading shader source")
	ErrCompile = errors.New("shader compilation failed")
	ErrLink    = errors.New("program link failed")
)

// BuildError carries the driver's info log for a failed stage.
type BuildError struct {
	Err   error  // ErrCompile or ErrLink
	Stage string // "vertex", "fragment" or "program"
	Log   string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Stage, e.Err, e.Log)
}

func (e *BuildError) Unwrap() error {
	return e.Err
}

// LoadProgram reads vertex and fragment sources from disk and builds a program.
// Both files are read before any GL call is made.
func LoadProgram(vertexPath, fragmentPath string) (uint32, error) {
	vertexSrc, err := os.ReadFile(vertexPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSource, err)
	}
	fragmentSrc, err := os.ReadFile(fragmentPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrSource, err)
	}
	return CompileProgram(string(vertexSrc), string(fragmentSrc))
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or a *BuildError if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return 0, &BuildError{Err: ErrLink, Stage: "program", Log: infoLog(log)}
	}

	logger.Named("shader").Debug("program linked", zap.Uint32("program", program))
	return program, nil
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, &BuildError{Err: ErrCompile, Stage: stage, Log: infoLog(log)}
	}

	return shader, nil
}

// infoLog trims the NUL terminator and trailing whitespace drivers leave in logs.
func infoLog(raw []byte) string {
	if i := strings.IndexByte(string(raw), 0); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(string(raw))
}

// GetUniform returns the uniform location for the given name.
// Returns -1 if the uniform is not found or inactive.
func GetUniform(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

// MustGetUniform returns the uniform location for the given name.
// Panics if the uniform is not found (useful for required uniforms).
func MustGetUniform(program uint32, name string) int32 {
	loc := GetUniform(program, name)
	if loc < 0 {
		panic(fmt.Sprintf("uniform %q not found in program %d", name, program))
	}
	return loc
}
