//go:build mage

package main

import (
	"os"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Compiles the GLSL shaders to SPIR-V under bin/shaders.
func (Build) Shaders() error {
	return buildShaders()
}

// Compiles the sandbox binary into bin/.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/vesper", "."), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the full test suite.
func (Build) Test() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if err := os.MkdirAll("bin/shaders", 0o755); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shaders/shader.vert", "-o", "bin/shaders/vert.spv"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("glslc", withArgs("shaders/shader.frag", "-o", "bin/shaders/frag.spv"), withStream()); err != nil {
		return err
	}
	return nil
}
