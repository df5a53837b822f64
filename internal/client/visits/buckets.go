package visits

import (
	"time"

	"github.com/dmitrijs2005/fieldvisits/internal/client/models"
	"github.com/dmitrijs2005/fieldvisits/internal/timex"
)

// TodayBucket returns every visit dated on now's calendar date, in
// client-then-visit order. Search text and date filters do not apply.
func TodayBucket(clients []models.Client, now time.Time, onlyMine bool, actorID string) []models.BucketEntry {
	return bucket(clients, onlyMine, actorID, func(d time.Time) bool {
		return timex.SameDate(d.In(now.Location()), now)
	})
}

// WeekBucket returns every visit dated within the Sunday-start week
// containing now.
func WeekBucket(clients []models.Client, now time.Time, onlyMine bool, actorID string) []models.BucketEntry {
	start, end := timex.WeekBounds(now)
	return bucket(clients, onlyMine, actorID, func(d time.Time) bool {
		d = d.In(now.Location())
		return timex.CompareDate(d, start) >= 0 && timex.CompareDate(d, end) < 0
	})
}

func bucket(clients []models.Client, onlyMine bool, actorID string, inRange func(time.Time) bool) []models.BucketEntry {
	var out []models.BucketEntry
	for i := range clients {
		c := &clients[i]
		for _, v := range c.Visits {
			if v.VisitDate.IsZero() || !inRange(v.VisitDate) {
				continue
			}
			if onlyMine && v.UserID != actorID {
				continue
			}
			out = append(out, models.BucketEntry{Visit: v, Client: c})
		}
	}
	return out
}

// FindClient returns the client with the given id.
func FindClient(clients []models.Client, clientID string) (*models.Client, bool) {
	for i := range clients {
		if clients[i].ClientID == clientID {
			return &clients[i], true
		}
	}
	return nil, false
}

// FindVisit returns the visit with the given id together with its client.
func FindVisit(clients []models.Client, visitID string) (models.BucketEntry, bool) {
	for i := range clients {
		for _, v := range clients[i].Visits {
			if v.VisitID == visitID {
				return models.BucketEntry{Visit: v, Client: &clients[i]}, true
			}
		}
	}
	return models.BucketEntry{}, false
}
