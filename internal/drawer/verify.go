package drawer

import "drawer-go/internal/model"

// VerifyReport lists file records whose bytes are missing from the vault.
type VerifyReport struct {
	Checked int
	Orphans []model.FileRecord
	Pruned  int
}

// Verify stats the bytes of every file record. With prune set, records whose
// bytes are missing are deleted from the catalog.
func (s *Service) Verify(prune bool) (*VerifyReport, error) {
	files := s.catalog.AllFiles()
	report := &VerifyReport{Checked: len(files)}

	for _, f := range files {
		_, err := s.vault.Stat(s.vault.Location(f.FolderPath, f.StorageName))
		switch {
		case err == nil:
		case IsKind(err, KindNotFound):
			report.Orphans = append(report.Orphans, f)
		default:
			return nil, err
		}
	}
	s.logger.Info("catalog verified", "checked", report.Checked, "orphans", len(report.Orphans))

	if !prune || len(report.Orphans) == 0 {
		return report, nil
	}

	ids := make([]string, len(report.Orphans))
	for i, f := range report.Orphans {
		ids[i] = f.ID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	plan, err := s.catalog.PlanDeleteFiles(ids)
	if err != nil {
		return nil, err
	}
	if err := s.catalog.Commit(plan); err != nil {
		return nil, err
	}
	report.Pruned = len(plan.Removed.Files)
	s.logger.Info("orphaned records pruned", "count", report.Pruned)
	return report, nil
}
