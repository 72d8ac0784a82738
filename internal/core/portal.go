package core

import (
	"context"
	"errors"
	"fmt"

	"immunizetrack/internal/presentation"
	"immunizetrack/internal/query"
	"immunizetrack/internal/records"
	"immunizetrack/pkg/domain"
)

// ErrNotParent is returned when a portal lookup names a staff account.
var ErrNotParent = errors.New("core: user is not a parent account")

// PortalView is the parent portal page for one selected child.
type PortalView struct {
	Selection    records.Selection `json:"selection"`
	Child        *domain.Child     `json:"child,omitempty"`
	Query        string            `json:"query"`
	Vaccinations []Row             `json:"vaccinations"`
	Upcoming     []Row             `json:"upcoming"`
	Summary      SummaryGroup      `json:"summary"`
}

// Children returns the children visible to parentID. An empty parentID lists
// every child; a parent account sees only its linked children, in store order.
func (s *Service) Children(ctx context.Context, parentID string) ([]domain.Child, error) {
	var out []domain.Child
	err := s.run(ctx, "portal.children", func(context.Context) error {
		view := s.dir.Children.Snapshot()
		if parentID == "" {
			out = view.All()
			return nil
		}
		parent, ok := s.dir.Users.Get(parentID)
		if !ok {
			return domain.ErrNotFound{Entity: domain.EntityUser, ID: parentID}
		}
		linked, ok := parent.ChildrenLinked()
		if !ok {
			return fmt.Errorf("%w: %s", ErrNotParent, parentID)
		}
		allowed := make(map[string]struct{}, len(linked))
		for _, id := range linked {
			allowed[id] = struct{}{}
		}
		out = make([]domain.Child, 0, len(linked))
		for child := range view.Records() {
			if _, ok := allowed[child.ID]; ok {
				out = append(out, child)
			}
		}
		return nil
	})
	return out, err
}

// DefaultSelection selects the first child of the store, or nothing when the
// store is empty.
func (s *Service) DefaultSelection() records.Selection {
	all := s.dir.Children.Snapshot()
	for child := range all.Records() {
		return records.Select(child.ID)
	}
	return records.Selection{}
}

// SelectChild returns a selection of id, or an empty selection when no such
// child exists.
func (s *Service) SelectChild(id string) records.Selection {
	return records.Normalize(records.Select(id), s.dir.Children.Snapshot())
}

// Portal renders the vaccination history of the selected child filtered by
// q. The summary counts the child's full history regardless of q. A
// selection that no longer resolves yields an empty view with no child.
func (s *Service) Portal(ctx context.Context, sel records.Selection, q string) PortalView {
	var out PortalView
	_ = s.run(ctx, "portal.view", func(context.Context) error {
		out = s.portal(sel, q)
		return nil
	})
	return out
}

func (s *Service) portal(sel records.Selection, q string) PortalView {
	catalog := s.Catalog()
	styles := catalog.Table(presentation.TableVaccinationStatus)
	out := PortalView{Query: q, Vaccinations: []Row{}, Upcoming: []Row{}}
	child, ok := records.Resolve(sel, s.dir.Children.Snapshot())
	if !ok {
		out.Summary = summaryGroup("status", presentation.TableVaccinationStatus,
			query.CountSlice[domain.Vaccination](nil, domain.VaccinationStatus, domain.VaccinationStatuses...), catalog)
		return out
	}
	out.Selection = sel
	out.Child = &child

	fields := query.Select(domain.VaccinationFields, domain.VaccinationSearch)
	var history []domain.Vaccination
	for v := range s.dir.Vaccinations.Snapshot().Records() {
		if v.ChildID != child.ID {
			continue
		}
		history = append(history, v)
		tag := domain.VaccinationStatus(v)
		row := Row{ID: v.ID, Category: tag, Style: styles.Style(tag), Record: v}
		if query.Matches(v, q, fields) {
			out.Vaccinations = append(out.Vaccinations, row)
		}
		if v.Pending() {
			out.Upcoming = append(out.Upcoming, row)
		}
	}
	agg := query.CountSlice(history, domain.VaccinationStatus, domain.VaccinationStatuses...)
	out.Summary = summaryGroup("status", presentation.TableVaccinationStatus, agg, catalog)
	return out
}

// ChildVaccinations returns the filtered history of the selected child.
func (s *Service) ChildVaccinations(ctx context.Context, sel records.Selection, q string) []domain.Vaccination {
	view := s.Portal(ctx, sel, q)
	out := make([]domain.Vaccination, 0, len(view.Vaccinations))
	for _, row := range view.Vaccinations {
		out = append(out, row.Record.(domain.Vaccination))
	}
	return out
}

// Upcoming returns the due and overdue entries of the selected child's full
// history, in store order. The portal query does not apply.
func (s *Service) Upcoming(ctx context.Context, sel records.Selection) []domain.Vaccination {
	view := s.Portal(ctx, sel, "")
	out := make([]domain.Vaccination, 0, len(view.Upcoming))
	for _, row := range view.Upcoming {
		out = append(out, row.Record.(domain.Vaccination))
	}
	return out
}

// VaccinationSummary counts the selected child's history by status.
func (s *Service) VaccinationSummary(ctx context.Context, sel records.Selection) SummaryGroup {
	return s.Portal(ctx, sel, "").Summary
}
