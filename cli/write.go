package cli

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/lukemcguire/reflink/config"
	"github.com/lukemcguire/reflink/result"
)

// writeDocument delivers the rewritten text: to stdout for dry runs and
// "-", otherwise atomically to the output path or back to the input.
func writeDocument(cfg *config.Configuration, inputPath, original, rewritten string, stdout io.Writer, logger *slog.Logger) error {
	if cfg.DryRun || cfg.Output == "-" {
		if _, err := io.WriteString(stdout, rewritten); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}

	target := cfg.Output
	if target == "" {
		target = inputPath
		if rewritten == original {
			logger.Info("no references rewritten; file left unchanged", "path", inputPath)
			return nil
		}
	}

	perm := os.FileMode(0o644)
	if info, err := os.Stat(inputPath); err == nil {
		perm = info.Mode().Perm()
	}
	if err := writeFileAtomic(target, []byte(rewritten), perm); err != nil {
		return err
	}
	logger.Info("document written", "path", target)
	return nil
}

func writeReport(path, format string, report *result.Report) error {
	var buf bytes.Buffer
	var err error
	switch format {
	case "csv":
		err = result.WriteCSV(&buf, report)
	default:
		err = result.WriteJSON(&buf, report)
	}
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return writeFileAtomic(path, buf.Bytes(), 0o644)
}

// writeFileAtomic writes data to a temporary file in the target directory
// and renames it over path, so readers never observe a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() {
		// Gone after a successful rename.
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename into %s: %w", path, err)
	}
	return nil
}
