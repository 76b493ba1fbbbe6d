package transcript

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"cleanmachine/app/config"

	"github.com/samber/do"
)

// Service appends finished conversation snapshots to a JSONL file so demo
// sessions can be reviewed later. Disabled by default; Export is a no-op
// then.
type Service struct {
	cfg *config.Config
	mu  sync.Mutex
}

func New(di *do.Injector) (*Service, error) {
	cfg := do.MustInvoke[*config.Config](di)

	if cfg.Transcript.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Transcript.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create transcript directory: %w", err)
		}
	}

	return &Service{cfg: cfg}, nil
}

func (s *Service) Export(record any) error {
	if !s.cfg.Transcript.Enabled {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.cfg.Transcript.Path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open transcript file: %w", err)
	}
	defer file.Close()

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript record: %w", err)
	}

	writer := bufio.NewWriter(file)

	if _, err = writer.Write(data); err != nil {
		return fmt.Errorf("failed to write transcript record: %w", err)
	}
	if err = writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("failed to write transcript record: %w", err)
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush transcript file: %w", err)
	}

	slog.Info("Exported transcript", "path", s.cfg.Transcript.Path)

	return nil
}
