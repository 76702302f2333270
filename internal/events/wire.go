package events

import (
	"fmt"
	"strings"

	"github.com/m3rciful/eventbot/core/telegram/format"
)

// listingQuery is the GraphQL document sent for a day. Filters are inlined
// because the endpoint is queried with GET.
const listingQuery = `query {
  eventListings(filters: {
    areas: { eq: %d },
    listingDate: { gte: %q, lte: %q }
  }, page: 1, pageSize: %d) {
    data {
      event {
        title
        date
        startTime
        endTime
        contentUrl
        venue { name }
      }
    }
    totalResults
  }
}`

func buildQuery(areaID int, start, end string, pageSize int) string {
	return fmt.Sprintf(listingQuery, areaID, start, end, pageSize)
}

type graphQLResponse struct {
	Data *struct {
		EventListings *struct {
			Data []struct {
				Event *wireEvent `json:"event"`
			} `json:"data"`
			TotalResults int `json:"totalResults"`
		} `json:"eventListings"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type wireEvent struct {
	Title      *string `json:"title"`
	Date       *string `json:"date"`
	StartTime  *string `json:"startTime"`
	EndTime    *string `json:"endTime"`
	ContentURL *string `json:"contentUrl"`
	Venue      *struct {
		Name *string `json:"name"`
	} `json:"venue"`
}

func (r graphQLResponse) records() ([]Record, error) {
	if r.Data == nil || r.Data.EventListings == nil {
		if len(r.Errors) > 0 {
			return nil, fmt.Errorf("graphql: %s", r.Errors[0].Message)
		}
		return nil, fmt.Errorf("graphql: missing eventListings")
	}
	out := make([]Record, 0, len(r.Data.EventListings.Data))
	for _, entry := range r.Data.EventListings.Data {
		if entry.Event == nil {
			continue
		}
		out = append(out, entry.Event.record())
	}
	return out, nil
}

func (w wireEvent) record() Record {
	rec := Record{
		Title:      format.DerefString(w.Title, "Untitled"),
		Date:       parseDay(w.Date),
		StartTime:  parseClock(w.StartTime),
		EndTime:    parseClock(w.EndTime),
		DetailPath: strings.TrimSpace(format.DerefString(w.ContentURL, "")),
	}
	if w.Venue != nil {
		if name := format.DerefString(w.Venue.Name, ""); name != "" {
			rec.Venue = &name
		}
	}
	return rec
}
