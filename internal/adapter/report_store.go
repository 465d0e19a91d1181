package adapter

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	m "sniff.dev/pkg/sniff/internal/model"
)

const (
	reportExtension = ".yaml"
	reportDirPerm   = 0o750
	reportFilePerm  = 0o600

	// ShardDirPrefix names the per-shard report subdirectories that merge
	// folds back into the parent reports directory.
	ShardDirPrefix = "shard_"
)

// ReportStore persists per-file analysis reports. One YAML document per
// scanned source, keyed by content hash, lives under the reports directory.
type ReportStore interface {
	SaveReports(dir m.Path, reports []m.Report) error
	LoadReports(dir m.Path) ([]m.Report, error)

	// CheckUpdates compares discovered sources against persisted reports and
	// returns the sources that need re-analysis together with the cached
	// reports that are still current.
	CheckUpdates(dir m.Path, sources []m.Source) (changed []m.Source, cached []m.Report, err error)

	// CleanReports drops persisted reports whose hash is not in keep.
	CleanReports(dir m.Path, keep []m.Source) error

	// MergeShards folds shard_* subdirectories into dir and removes them.
	MergeShards(dir m.Path) error
}

// YamlReportStore is the concrete ReportStore backed by YAML files.
type YamlReportStore struct{}

// NewReportStore constructs a YamlReportStore.
func NewReportStore() *YamlReportStore {
	return &YamlReportStore{}
}

// SaveReports writes each report to <dir>/<hash>.yaml.
func (s *YamlReportStore) SaveReports(dir m.Path, reports []m.Report) error {
	if dir == "" {
		return errors.New("reports directory not set")
	}

	if err := os.MkdirAll(string(dir), reportDirPerm); err != nil {
		return fmt.Errorf("create reports directory: %w", err)
	}

	for _, report := range reports {
		if report.Hash == "" {
			return fmt.Errorf("report for %s has no content hash", report.Path)
		}

		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("marshal report for %s: %w", report.Path, err)
		}

		target := filepath.Join(string(dir), report.Hash+reportExtension)
		if err := os.WriteFile(target, data, reportFilePerm); err != nil {
			return fmt.Errorf("write report for %s: %w", report.Path, err)
		}
	}

	return nil
}

// LoadReports reads every report in dir. A missing directory yields an empty
// slice so first runs need no special casing.
func (s *YamlReportStore) LoadReports(dir m.Path) ([]m.Report, error) {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("read reports directory: %w", err)
	}

	var reports []m.Report

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), reportExtension) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(string(dir), entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("read report %s: %w", entry.Name(), err)
		}

		var report m.Report
		if err := yaml.Unmarshal(data, &report); err != nil {
			return nil, fmt.Errorf("unmarshal report %s: %w", entry.Name(), err)
		}

		reports = append(reports, report)
	}

	return reports, nil
}

// CheckUpdates splits sources into those with a current cached report and
// those that changed since the last scan.
func (s *YamlReportStore) CheckUpdates(dir m.Path, sources []m.Source) ([]m.Source, []m.Report, error) {
	existing, err := s.LoadReports(dir)
	if err != nil {
		return nil, nil, err
	}

	byHash := make(map[string]m.Report, len(existing))
	for _, report := range existing {
		byHash[report.Hash] = report
	}

	var (
		changed []m.Source
		cached  []m.Report
	)

	for _, source := range sources {
		if source.Origin == nil {
			continue
		}

		if report, ok := byHash[source.Origin.Hash]; ok {
			cached = append(cached, report)
			continue
		}

		changed = append(changed, source)
	}

	return changed, cached, nil
}

// CleanReports removes persisted reports for hashes absent from keep.
func (s *YamlReportStore) CleanReports(dir m.Path, keep []m.Source) error {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}

		return fmt.Errorf("read reports directory: %w", err)
	}

	keepHashes := map[string]bool{}

	for _, source := range keep {
		if source.Origin != nil {
			keepHashes[source.Origin.Hash] = true
		}
	}

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, reportExtension) {
			continue
		}

		hash := strings.TrimSuffix(name, reportExtension)
		if keepHashes[hash] {
			continue
		}

		if err := os.Remove(filepath.Join(string(dir), name)); err != nil {
			return fmt.Errorf("remove stale report %s: %w", name, err)
		}
	}

	return nil
}

// MergeShards folds shard_* subdirectories back into dir. Sharded runs
// assign every file to exactly one shard, so folding never overwrites one
// shard's findings with another's.
func (s *YamlReportStore) MergeShards(dir m.Path) error {
	entries, err := os.ReadDir(string(dir))
	if err != nil {
		return fmt.Errorf("read reports directory: %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ShardDirPrefix) {
			continue
		}

		shardDir := m.Path(filepath.Join(string(dir), entry.Name()))

		reports, err := s.LoadReports(shardDir)
		if err != nil {
			return err
		}

		if err := s.SaveReports(dir, reports); err != nil {
			return err
		}

		if err := os.RemoveAll(string(shardDir)); err != nil {
			return fmt.Errorf("remove merged shard %s: %w", entry.Name(), err)
		}
	}

	return nil
}
