package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/fitquest/internal/fitness"
)

const watermarkSuffix = ".watermark"

// FileStore 把状态写成单个 JSON 文件，水位线写在旁边的文件里
type FileStore struct {
	path          string
	watermarkPath string
	mu            sync.Mutex
}

// NewFileStore 构造 FileStore，必要时创建父目录
func NewFileStore(path string) (*FileStore, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		trimmed = "data.json"
	}
	if dir := filepath.Dir(trimmed); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}
	return &FileStore{path: trimmed, watermarkPath: trimmed + watermarkSuffix}, nil
}

// Load 读取状态文件，文件不存在时返回空状态
func (s *FileStore) Load(ctx context.Context) (fitness.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return fitness.DefaultState(), nil
	}
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("read state file: %w", err)
	}

	state, err := fitness.DecodeState(data)
	if err != nil {
		return fitness.DefaultState(), fmt.Errorf("decode state file: %w", err)
	}
	return state, nil
}

// Save 先写临时文件再重命名
func (s *FileStore) Save(ctx context.Context, state fitness.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return writeFileAtomic(s.path, data)
}

// LoadWatermark 读取水位线文件
func (s *FileStore) LoadWatermark(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readWatermarkLocked()
}

// SwapWatermark 进程内由互斥锁保证原子性
func (s *FileStore) SwapWatermark(ctx context.Context, old, next int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.readWatermarkLocked()
	if err != nil {
		return err
	}
	if current != old {
		return ErrWatermarkConflict
	}
	return writeFileAtomic(s.watermarkPath, []byte(strconv.Itoa(next)))
}

// Ping 确认数据目录可访问
func (s *FileStore) Ping(ctx context.Context) error {
	_, err := os.Stat(filepath.Dir(s.path))
	return err
}

func (s *FileStore) Close() error {
	return nil
}

func (s *FileStore) readWatermarkLocked() (int, error) {
	data, err := os.ReadFile(s.watermarkPath)
	if errors.Is(err, os.ErrNotExist) {
		return fitness.InitialWatermark, nil
	}
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("read watermark file: %w", err)
	}

	value, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return fitness.InitialWatermark, fmt.Errorf("parse watermark %q: %w", string(data), err)
	}
	return value, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
