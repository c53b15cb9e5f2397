package earthengine

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// AuthResult reports the outcome of launching the CLI authentication flow.
type AuthResult struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// StartAuthentication clears any cached credentials and launches the
// `earthengine authenticate` CLI. The flow completes in the operator's
// terminal; this call only starts it.
func StartAuthentication(ctx context.Context, credentialsPath string) AuthResult {
	if credentialsPath != "" {
		if err := os.Remove(credentialsPath); err != nil && !os.IsNotExist(err) {
			return AuthResult{
				Status:  "error",
				Message: fmt.Sprintf("failed to remove cached credentials: %v", err),
			}
		}
	}

	cmd := exec.CommandContext(ctx, "earthengine", "authenticate")
	output, err := cmd.CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(output))
		if msg == "" {
			msg = "Failed to start authentication process"
		}
		return AuthResult{Status: "error", Message: msg}
	}

	return AuthResult{
		Status:  "success",
		Message: "Authentication process started. Please check your terminal to complete the process.",
	}
}
