package report

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"
)

// NewsFeed renders the news section of rep as an RSS 2.0 document. link is
// the dashboard URL the channel points back to. Each item's category is its
// normalised sentiment.
func NewsFeed(rep Report, link string) ([]byte, error) {
	now := time.Now().UTC()
	feed := &feeds.Feed{
		Title:       rep.Header + " · News Highlights",
		Link:        &feeds.Link{Href: link},
		Description: fmt.Sprintf("Sentiment-tagged news for %s", rep.Header),
		Updated:     now,
		Items:       make([]*feeds.Item, 0, len(rep.News)),
	}
	for _, c := range rep.News {
		item := &feeds.Item{
			Title:       c.Title,
			Description: c.Description,
			Id:          c.URL,
		}
		if c.URL != "" {
			item.Link = &feeds.Link{Href: c.URL}
		}
		feed.Items = append(feed.Items, item)
	}

	channel := (&feeds.Rss{Feed: feed}).RssFeed()
	channel.Generator = "stockdash"
	// Publication times are passed through when they cannot be parsed, so
	// they are set on the channel items rather than via feeds.Item.Created.
	for i, c := range rep.News {
		channel.Items[i].Category = string(c.Badge.Tone)
		channel.Items[i].PubDate = rssDate(c.PublishedAt)
		channel.Items[i].Source = c.Source
	}

	out, err := feeds.ToXML(channel)
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}
	return []byte(out), nil
}

// rssDate converts common service timestamps to RFC 1123; anything else is
// passed through as received.
func rssDate(s string) string {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.RFC1123Z)
		}
	}
	return s
}
