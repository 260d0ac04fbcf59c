package bootstrap

import "testing"

func TestLoadEnvWithoutFile(t *testing.T) {
	// No .env exists in the test working directory; startup must proceed on
	// the process environment alone.
	LoadEnv()
}
