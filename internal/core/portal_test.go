package core

import (
	"context"
	"errors"
	"testing"

	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

func TestChildrenVisibleToParent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	kids, err := svc.Children(ctx, "7")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(kids) != 2 || kids[0].ID != "1" || kids[1].ID != "2" {
		t.Fatalf("unexpected children %+v", kids)
	}
	all, err := svc.Children(ctx, "")
	if err != nil || len(all) != 2 {
		t.Fatalf("expected every child without a parent, got %d %v", len(all), err)
	}
	if _, err := svc.Children(ctx, "1"); !errors.Is(err, ErrNotParent) {
		t.Fatalf("expected ErrNotParent for staff, got %v", err)
	}
	var nf domain.ErrNotFound
	if _, err := svc.Children(ctx, "404"); !errors.As(err, &nf) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestPortalViewFiltersHistoryButNotSummary(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sel := svc.DefaultSelection()
	if sel.ID != "1" {
		t.Fatalf("expected first child selected, got %+v", sel)
	}
	view := svc.Portal(ctx, sel, "mmr")
	if view.Child == nil || view.Child.ID != "1" {
		t.Fatalf("expected child 1, got %+v", view.Child)
	}
	if len(view.Vaccinations) != 1 {
		t.Fatalf("expected one MMR entry, got %d", len(view.Vaccinations))
	}
	if view.Summary.Total != 3 || view.Summary.Count(domain.VaccinationCompleted) != 2 || view.Summary.Count(domain.VaccinationDue) != 1 {
		t.Fatalf("summary must cover the full history: %+v", view.Summary)
	}

	second := svc.VaccinationSummary(ctx, svc.SelectChild("2"))
	if second.Count(domain.VaccinationOverdue) != 1 || second.Total != 3 {
		t.Fatalf("unexpected summary for child 2 %+v", second)
	}
	history := svc.ChildVaccinations(ctx, svc.SelectChild("2"), "")
	for _, v := range history {
		if v.ChildID != "2" {
			t.Fatalf("history leaked entry of child %s", v.ChildID)
		}
	}
}

func TestPortalSelectionOfMissingChild(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	if sel := svc.SelectChild("99"); !sel.None() {
		t.Fatalf("unknown child must resolve to none, got %+v", sel)
	}
	view := svc.Portal(ctx, records.Select("99"), "")
	if view.Child != nil || len(view.Vaccinations) != 0 || view.Summary.Total != 0 {
		t.Fatalf("expected empty view, got %+v", view)
	}
	if len(view.Summary.Buckets) != len(domain.VaccinationStatuses) {
		t.Fatalf("empty summary must still list known statuses")
	}
}

func TestSelectionSurvivesReplaceOnlyWhileChildExists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sel := svc.SelectChild("2")
	snap := svc.Directory().Snapshot()
	snap.Children = snap.Children[:1]
	if err := svc.Replace(ctx, snap); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if view := svc.Portal(ctx, sel, ""); view.Child != nil {
		t.Fatalf("selection of a removed child must not resolve")
	}
}

func TestDefaultSelectionOnEmptyStore(t *testing.T) {
	svc := newTestService(t)
	if err := svc.Replace(context.Background(), domain.Snapshot{}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	if sel := svc.DefaultSelection(); !sel.None() {
		t.Fatalf("expected no selection, got %+v", sel)
	}
}

func TestUpcomingListsDueAndOverdueOfFullHistory(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	sel := svc.SelectChild("2")

	view := svc.Portal(ctx, sel, "zzz")
	if len(view.Vaccinations) != 0 {
		t.Fatalf("query should empty the history, got %d rows", len(view.Vaccinations))
	}
	if len(view.Upcoming) != 2 || view.Upcoming[0].ID != "5" || view.Upcoming[1].ID != "6" {
		t.Fatalf("upcoming must ignore the query, got %+v", view.Upcoming)
	}
	got := svc.Upcoming(ctx, sel)
	if len(got) != 2 || got[0].Status != domain.VaccinationDue || got[1].Status != domain.VaccinationOverdue {
		t.Fatalf("unexpected upcoming entries %+v", got)
	}
	if first := svc.Upcoming(ctx, svc.SelectChild("1")); len(first) != 1 || first[0].ID != "3" {
		t.Fatalf("unexpected upcoming for child 1 %+v", first)
	}
	if none := svc.Upcoming(ctx, svc.SelectChild("missing")); len(none) != 0 {
		t.Fatalf("missing child must have no upcoming entries, got %+v", none)
	}
}

func TestChildrenUnaffectedByCallerMutation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	parent, err := svc.User(ctx, "7")
	if err != nil {
		t.Fatalf("user: %v", err)
	}
	link := parent.Profile.(domain.ParentLink)
	link.ChildrenLinked[0] = "999"
	children, err := svc.Children(ctx, "7")
	if err != nil {
		t.Fatalf("children: %v", err)
	}
	if len(children) != 2 {
		t.Fatalf("stored links changed through a returned user: %+v", children)
	}
}
