package schedule

import (
	"fmt"
	"time"

	"salon-service/internal/models"
)

// PlannedRow is an availability row a template expansion wants created.
type PlannedRow struct {
	Type  models.AvailabilityType
	Start time.Time
	End   time.Time
}

// DayPlan is one concrete calendar day of a template expansion. Replacement
// of prior work/break rows is bounded by this day; absence rows are never
// part of it.
type DayPlan struct {
	Date time.Time
	Rows []PlannedRow
}

// ExpandTemplate materializes a weekly pattern over the given number of weeks
// starting at weekStart. Each non-empty weekday pattern lands on the first
// matching calendar day on or after weekStart within its week. Segments whose
// computed end is not after their start are skipped.
func ExpandTemplate(tpl *models.AvailabilityTemplate, weekStart time.Time, weeks int) ([]DayPlan, error) {
	if weeks < 1 {
		weeks = 1
	}

	loc := weekStart.Location()
	base := TruncateToDate(weekStart, loc)
	baseWeekday := int(base.Weekday())

	var plans []DayPlan
	for week := 0; week < weeks; week++ {
		for weekday := 0; weekday < 7; weekday++ {
			segments := tpl.Days[weekday]
			if len(segments) == 0 {
				continue
			}

			dayOffset := (weekday - baseWeekday + 7) % 7
			date := base.AddDate(0, 0, 7*week+dayOffset)

			plan := DayPlan{Date: date}
			for _, seg := range segments {
				start, err := CombineDateTime(date, seg.Start)
				if err != nil {
					return nil, fmt.Errorf("segment start: %w", err)
				}
				end, err := CombineDateTime(date, seg.End)
				if err != nil {
					return nil, fmt.Errorf("segment end: %w", err)
				}
				if !end.After(start) {
					continue
				}

				rowType := models.AvailabilityWork
				if seg.Type == models.SegmentBreak {
					rowType = models.AvailabilityBreak
				}

				plan.Rows = append(plan.Rows, PlannedRow{
					Type:  rowType,
					Start: start,
					End:   end,
				})
			}

			if len(plan.Rows) > 0 {
				plans = append(plans, plan)
			}
		}
	}

	return plans, nil
}

// ValidateTemplateDays checks every segment for a strict HH:mm time format
// and a known type. Segment ordering and overlap are deliberately left to
// operator judgment.
func ValidateTemplateDays(days [7][]models.TemplateSegment) error {
	for weekday, segments := range days {
		for i, seg := range segments {
			if !ValidHHMM(seg.Start) {
				return fmt.Errorf("day %d segment %d: invalid start %q, want HH:mm", weekday, i, seg.Start)
			}
			if !ValidHHMM(seg.End) {
				return fmt.Errorf("day %d segment %d: invalid end %q, want HH:mm", weekday, i, seg.End)
			}
			if seg.Type != models.SegmentWork && seg.Type != models.SegmentBreak {
				return fmt.Errorf("day %d segment %d: invalid type %q", weekday, i, seg.Type)
			}
		}
	}
	return nil
}
