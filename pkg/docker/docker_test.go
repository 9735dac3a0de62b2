package docker

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/codelldb/lldb-dist/pkg/utils/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvArgsDefaults(t *testing.T) {
	root := filepath.FromSlash("/src/codelldb")
	args := EnvArgs(Options{ProjectRoot: root})

	assert.Equal(t, []string{
		"run", "-it", "--privileged",
		"-v" + root + ":/workspace/source:ro",
		"-v" + filepath.Join(root, "build") + ":/workspace/build:rw",
		"-v" + filepath.Join(filepath.Dir(root), "build-tools", "linux") + ":/workspace/build-tools:ro",
		"-eBUILD_SOURCESDIRECTORY=/workspace/source",
		"-eAGENT_BUILDDIRECTORY=/workspace/build",
		"-eCMAKE_BUILD_TYPE=RelWithDebInfo",
		"-eSCCACHE_DIR=/workspace/build/.sccache",
		"-eSCCACHE_IDLE_TIMEOUT=60",
		"-w/workspace/build",
		"-u1000:1000",
		"-v/etc/passwd:/etc/passwd",
		"vadimcn/linux-builder:latest",
		"bash", "-c", "export PATH=/workspace/build-tools/bin:$PATH; bash",
	}, args)
}

func TestEnvArgsArch(t *testing.T) {
	root := filepath.FromSlash("/src/codelldb")
	args := EnvArgs(Options{ProjectRoot: root, Arch: "aarch64"})
	assert.Contains(t, args, "-v"+filepath.Join(root, "build-aarch64")+":/workspace/build:rw")

	args = EnvArgs(Options{ProjectRoot: root, Arch: "aarch64", BuildDir: "/b", BuildTools: "/t"})
	assert.Contains(t, args, "-v/b:/workspace/build:rw")
	assert.Contains(t, args, "-v/t:/workspace/build-tools:ro")
}

func TestRun(t *testing.T) {
	r := &process.RecordingRunner{}
	err := Run(context.Background(), r, Options{ProjectRoot: "/src"})
	require.NoError(t, err)
	require.Len(t, r.Commands, 1)
	assert.Equal(t, "docker", r.Commands[0].Name)
	assert.True(t, r.Commands[0].Interactive)

	assert.Error(t, Run(context.Background(), r, Options{}))
}
