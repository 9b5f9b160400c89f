package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// SchedulerService wraps cron-based jobs. Jobs never overlap.
type SchedulerService struct {
	cron *cron.Cron
}

func NewSchedulerService(loc *time.Location) *SchedulerService {
	return &SchedulerService{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DefaultLogger)),
		),
	}
}

// ScheduleWeekly registers a weekly job at a "DAY HH:MM" time string, e.g. "MON 06:00".
func (s *SchedulerService) ScheduleWeekly(when string, job func()) (cron.EntryID, error) {
	expr, err := buildWeeklyExpr(when)
	if err != nil {
		return 0, err
	}
	return s.cron.AddFunc(expr, job)
}

// Next reports the next activation of the given entry.
func (s *SchedulerService) Next(id cron.EntryID) time.Time {
	return s.cron.Entry(id).Next
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func buildWeeklyExpr(when string) (string, error) {
	fields := strings.Fields(when)
	if len(fields) != 2 {
		return "", fmt.Errorf("invalid schedule %q, expected DAY HH:MM", when)
	}
	weekday, ok := parseWeekday(fields[0])
	if !ok {
		return "", fmt.Errorf("invalid weekday in %q", when)
	}
	parts := strings.Split(fields[1], ":")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid time in %q, expected HH:MM", when)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return "", fmt.Errorf("invalid hour in %q", when)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid minute in %q", when)
	}
	// cron format: second minute hour dom month dow
	return fmt.Sprintf("0 %d %d * * %d", minute, hour, int(weekday)), nil
}

// parseWeekday accepts a full English day name or its three-letter
// abbreviation, case-insensitively.
func parseWeekday(raw string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := d.String()
		if strings.EqualFold(raw, name) || strings.EqualFold(raw, name[:3]) {
			return d, true
		}
	}
	return 0, false
}
