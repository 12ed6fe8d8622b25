package domain

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"
)

// weekSummaryLimit is the number of characters kept before the summary is cut short.
const weekSummaryLimit = 128

// ScheduledWeek is one week of the review calendar. Each day holds the songs
// scheduled for it.
type ScheduledWeek struct {
	WeekBeginning time.Time           `json:"week_beginning"` // always a Monday
	Days          map[string][]string `json:"days"`           // lower-case day name -> song IDs
	ID            string              `json:"id"`
	WeekInfo      string              `json:"week_info,omitempty"`
	CurrentWeek   bool                `json:"current_week"`
}

// AllDays lists the days of a scheduled week, Monday first.
var AllDays = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday, time.Sunday,
}

// Weekdays lists the days shown on the schedule page: Monday through Saturday.
func Weekdays() []time.Weekday {
	return AllDays[:6]
}

// DayKey is the key used for a weekday in ScheduledWeek.Days.
func DayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// ParseWeekday parses a day name such as "monday" or "Mon".
func ParseWeekday(s string) (time.Weekday, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, d := range AllDays {
		key := DayKey(d)
		if s == key || (len(s) == 3 && strings.HasPrefix(key, s)) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", s)
}

// SongIDs returns the songs scheduled on day.
func (w *ScheduledWeek) SongIDs(day time.Weekday) []string {
	return w.Days[DayKey(day)]
}

// AddSong schedules a song on day. Returns false if it is already there.
func (w *ScheduledWeek) AddSong(day time.Weekday, songID string) bool {
	if w.Days == nil {
		w.Days = make(map[string][]string)
	}
	key := DayKey(day)
	if slices.Contains(w.Days[key], songID) {
		return false
	}
	w.Days[key] = append(w.Days[key], songID)
	return true
}

// RemoveSong unschedules a song from day. Returns false if it was not there.
func (w *ScheduledWeek) RemoveSong(day time.Weekday, songID string) bool {
	key := DayKey(day)
	i := slices.Index(w.Days[key], songID)
	if i < 0 {
		return false
	}
	w.Days[key] = slices.Delete(w.Days[key], i, i+1)
	return true
}

// DaySchedule is a resolved day of a week: the day and its songs, newest upload first.
type DaySchedule struct {
	Day   time.Weekday
	Songs []*Song
}

// SortNewestFirst orders songs by upload date, most recent first.
func SortNewestFirst(songs []*Song) {
	slices.SortStableFunc(songs, func(a, b *Song) int {
		return cmp.Compare(b.UploadDate.UnixNano(), a.UploadDate.UnixNano())
	})
}

// WeekSummary joins the artists of every scheduled song, day by day,
// and cuts the result at 128 characters followed by "...".
func WeekSummary(days []DaySchedule) string {
	var artists []string
	for _, day := range days {
		for _, song := range day.Songs {
			artists = append(artists, song.Artist)
		}
	}
	summary := strings.Join(artists, ", ")

	runes := []rune(summary)
	if len(runes) <= weekSummaryLimit {
		return summary
	}
	return string(runes[:weekSummaryLimit]) + "..."
}

// MondayOf returns midnight of the Monday starting t's week, in t's location.
func MondayOf(t time.Time) time.Time {
	offset := (int(t.Weekday()) + 6) % 7
	y, m, d := t.AddDate(0, 0, -offset).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
