package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Storage представляет файловый архив отчетов о жеребьёвках
type Storage struct {
	basePath    string
	maxFileSize int64
}

// NewStorage создает новое файловое хранилище
func NewStorage(basePath string, maxFileSize int64) (*Storage, error) {
	// Создаем базовую директорию
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	return &Storage{
		basePath:    basePath,
		maxFileSize: maxFileSize,
	}, nil
}

// SaveReport сохраняет отчет группы и возвращает путь к файлу
func (s *Storage) SaveReport(groupID, content string) (string, error) {
	if s.maxFileSize > 0 && int64(len(content)) > s.maxFileSize {
		return "", fmt.Errorf("report size exceeds maximum allowed size")
	}

	dir, err := s.groupDir(groupID)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	// имя сортируется по времени создания
	fileName := time.Now().UTC().Format("20060102T150405") + "-" + uuid.New().String()[:8] + ".txt"
	filePath := filepath.Join(dir, fileName)

	if err := os.WriteFile(filePath, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return filePath, nil
}

// ListReports возвращает пути отчетов группы от старых к новым
func (s *Storage) ListReports(groupID string) ([]string, error) {
	dir, err := s.groupDir(groupID)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".txt" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}

// LatestReport возвращает путь к последнему отчету группы
func (s *Storage) LatestReport(groupID string) (string, error) {
	paths, err := s.ListReports(groupID)
	if err != nil {
		return "", err
	}
	if len(paths) == 0 {
		return "", os.ErrNotExist
	}
	return paths[len(paths)-1], nil
}

// DeleteReports удаляет все отчеты группы
func (s *Storage) DeleteReports(groupID string) error {
	dir, err := s.groupDir(groupID)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}
	return nil
}

// CleanupOldFiles удаляет отчеты старше maxAge
func (s *Storage) CleanupOldFiles(maxAge time.Duration) error {
	root := filepath.Join(s.basePath, "reports")

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && time.Since(info.ModTime()) > maxAge {
			return os.Remove(path)
		}
		return nil
	})
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// groupDir не дает выйти за пределы basePath через код группы
func (s *Storage) groupDir(groupID string) (string, error) {
	if groupID == "" || strings.ContainsAny(groupID, `/\.`) {
		return "", fmt.Errorf("invalid group id %q", groupID)
	}
	return filepath.Join(s.basePath, "reports", groupID), nil
}
