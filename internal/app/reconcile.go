package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/studynotion-backend/internal/domain"
	"github.com/yungbote/studynotion-backend/internal/pkg/dbctx"
	"github.com/yungbote/studynotion-backend/internal/platform/media"
)

type OrphanMedia struct {
	Kind    media.Kind
	Key     string
	Removed bool
	Error   string
}

type IncompleteRun struct {
	Run         *types.CascadeRun
	FailedSteps []*types.CascadeStep
}

// ReconcileReport lists state left behind by partial cascades or by media
// writes whose database rows never committed.
type ReconcileReport struct {
	Applied        bool
	OrphanMedia    []OrphanMedia
	StaleLinks     []*types.RefLink
	OrphanProgress []*types.CourseProgress
	IncompleteRuns []IncompleteRun
	LinksRemoved   int64
	ProgressPurged int64
}

// Reconcile scans for orphaned state. With apply set it removes orphan media,
// stale links and orphaned progress rows; incomplete cascade runs are only
// reported.
//
// Stored blobs are listed before referenced keys are read, so an upload that
// commits between the two reads is never mistaken for an orphan. Uploads still
// in flight when the scan runs can be; run it against a quiet system.
func (a *App) Reconcile(ctx context.Context, apply bool, runLimit int) (*ReconcileReport, error) {
	dbc := dbctx.Context{Ctx: ctx}
	report := &ReconcileReport{Applied: apply}

	// Avatar references are public URLs; they map back to keys only when
	// media is served from a local prefix.
	kinds := []media.Kind{media.KindThumbnail, media.KindVideo}
	if a.Clients.Media.StaticPrefix != "" {
		kinds = append(kinds, media.KindImage)
	}

	stored := map[media.Kind][]string{}
	for _, kind := range kinds {
		keys, err := a.Clients.Media.Store.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("list %s media: %w", kind, err)
		}
		stored[kind] = keys
	}
	referenced := map[string]bool{}
	thumbs, err := a.Repos.Course.ListThumbnailKeys(dbc)
	if err != nil {
		return nil, err
	}
	videos, err := a.Repos.SubSection.ListVideoKeys(dbc)
	if err != nil {
		return nil, err
	}
	images, err := a.Repos.User.ListImageKeys(dbc, a.Clients.Media.StaticPrefix)
	if err != nil {
		return nil, err
	}
	for _, list := range [][]string{thumbs, videos, images} {
		for _, k := range list {
			referenced[k] = true
		}
	}
	for _, kind := range kinds {
		for _, key := range stored[kind] {
			if referenced[key] {
				continue
			}
			o := OrphanMedia{Kind: kind, Key: key}
			if apply {
				if err := a.Clients.Media.Store.Delete(ctx, media.Ref{Key: key}); err != nil {
					o.Error = err.Error()
				} else {
					o.Removed = true
				}
			}
			report.OrphanMedia = append(report.OrphanMedia, o)
		}
	}

	report.StaleLinks, err = a.Repos.RefLink.ListStale(dbc)
	if err != nil {
		return nil, err
	}
	report.OrphanProgress, err = a.Repos.CourseProgress.ListOrphaned(dbc)
	if err != nil {
		return nil, err
	}
	if apply {
		ids := make([]uint, 0, len(report.StaleLinks))
		for _, l := range report.StaleLinks {
			ids = append(ids, l.ID)
		}
		if report.LinksRemoved, err = a.Repos.RefLink.DeleteByIDs(dbc, ids); err != nil {
			return nil, err
		}
		pids := make([]uuid.UUID, 0, len(report.OrphanProgress))
		for _, p := range report.OrphanProgress {
			pids = append(pids, p.ID)
		}
		if report.ProgressPurged, err = a.Repos.CourseProgress.DeleteByIDs(dbc, pids); err != nil {
			return nil, err
		}
	}

	var runs []*types.CascadeRun
	for _, status := range []string{types.CascadeRunPartial, types.CascadeRunRunning} {
		rows, err := a.Repos.CascadeRun.ListByStatus(dbc, status, runLimit)
		if err != nil {
			return nil, err
		}
		runs = append(runs, rows...)
	}
	runIDs := make([]uuid.UUID, 0, len(runs))
	for _, r := range runs {
		runIDs = append(runIDs, r.ID)
	}
	failed, err := a.Repos.CascadeStep.ListFailed(dbc, runIDs)
	if err != nil {
		return nil, err
	}
	byRun := map[uuid.UUID][]*types.CascadeStep{}
	for _, s := range failed {
		byRun[s.RunID] = append(byRun[s.RunID], s)
	}
	for _, r := range runs {
		report.IncompleteRuns = append(report.IncompleteRuns, IncompleteRun{Run: r, FailedSteps: byRun[r.ID]})
	}

	a.Log.Info("Reconcile finished",
		"applied", apply,
		"orphan_media", len(report.OrphanMedia),
		"stale_links", len(report.StaleLinks),
		"orphan_progress", len(report.OrphanProgress),
		"incomplete_runs", len(report.IncompleteRuns),
	)
	return report, nil
}
