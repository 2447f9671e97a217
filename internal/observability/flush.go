package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry runs before the process powers down: it writes the metrics textfile
// (when textfile is set) and syncs the logger.
func FlushTelemetry(ctx context.Context, logger *zap.Logger, textfile string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if textfile != "" {
		if err := WriteTextfile(textfile); err != nil {
			return err
		}
	}
	if logger != nil {
		if err := logger.Sync(); err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
	}
	return nil
}
