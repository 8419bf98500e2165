package source

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/netip"
	"net/url"
	"strings"
	"syscall"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/mmcdole/gofeed"
	"github.com/sirupsen/logrus"

	"autoposter-bot/internal/logger"
)

const (
	fetchTimeout = 30 * time.Second
	maxPageSize  = 5 << 20
	maxKeywords  = 5
)

// ErrBlockedAddress is returned when a reference link resolves to a
// loopback, private or otherwise non-public address.
var ErrBlockedAddress = errors.New("address not allowed")

// Fetcher reads reference pages and topic feeds. Reference pages come from
// user input and may only be fetched from public addresses; feed URLs are
// operator configuration and are not restricted.
type Fetcher struct {
	parser     *gofeed.Parser
	pageClient *http.Client
	log        *logrus.Entry
}

func NewFetcher() *Fetcher {
	return newFetcher(false)
}

func newFetcher(allowPrivate bool) *Fetcher {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: fetchTimeout}

	dialer := &net.Dialer{Timeout: 10 * time.Second}
	if !allowPrivate {
		dialer.Control = publicOnly
	}
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	transport.DialContext = dialer.DialContext
	return &Fetcher{
		parser:     parser,
		pageClient: &http.Client{Timeout: fetchTimeout, Transport: transport},
		log:        logger.Component("source"),
	}
}

// publicOnly runs after DNS resolution, so redirects and rebinding are
// checked against the address actually dialed.
func publicOnly(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	ip, err := netip.ParseAddr(host)
	if err != nil {
		return err
	}
	if !isPublicIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedAddress, ip)
	}
	return nil
}

var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

func isPublicIP(ip netip.Addr) bool {
	ip = ip.Unmap()
	switch {
	case !ip.IsValid(),
		ip.IsLoopback(),
		ip.IsPrivate(),
		ip.IsLinkLocalUnicast(),
		ip.IsLinkLocalMulticast(),
		ip.IsInterfaceLocalMulticast(),
		ip.IsMulticast(),
		ip.IsUnspecified(),
		sharedAddressSpace.Contains(ip):
		return false
	}
	return true
}

// IsReference reports whether topic is an http(s) URL.
func IsReference(topic string) bool {
	u, err := url.Parse(strings.TrimSpace(topic))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Research turns a reference URL into its article title plus page
// keywords. Plain topics are returned unchanged.
func (f *Fetcher) Research(ctx context.Context, topic string) (string, []string, error) {
	topic = strings.TrimSpace(topic)
	if !IsReference(topic) {
		return topic, nil, nil
	}
	pageURL, err := url.Parse(topic)
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse link: %w", err)
	}

	page, err := f.download(ctx, pageURL.String())
	if err != nil {
		return "", nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", nil, fmt.Errorf("failed to parse page: %w", err)
	}
	keywords := extractKeywords(doc)

	title := ""
	article, err := readability.FromReader(bytes.NewReader(page), pageURL)
	if err != nil {
		f.log.WithError(err).WithField("url", topic).Warn("Readability could not process page")
	} else {
		title = strings.TrimSpace(article.Title)
	}
	if title == "" {
		title = pageTitle(doc)
	}
	if title == "" {
		title = topic
	}

	f.log.WithFields(logrus.Fields{"url": topic, "title": title, "keywords": keywords}).Debug("Reference researched")
	return title, keywords, nil
}

// SuggestTopics returns up to limit distinct item titles across feeds, in
// feed order. Feeds that fail to load are skipped.
func (f *Fetcher) SuggestTopics(ctx context.Context, feedURLs []string, limit int) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, feedURL := range feedURLs {
		if limit > 0 && len(topics) >= limit {
			break
		}
		feedURL = strings.TrimSpace(feedURL)
		if feedURL == "" {
			continue
		}
		feed, err := f.parser.ParseURLWithContext(feedURL, ctx)
		if err != nil {
			f.log.WithError(err).WithField("feed", feedURL).Warn("Failed to fetch topic feed")
			continue
		}
		for _, item := range feed.Items {
			if limit > 0 && len(topics) >= limit {
				break
			}
			title := strings.TrimSpace(item.Title)
			key := strings.ToLower(title)
			if title == "" || seen[key] {
				continue
			}
			seen[key] = true
			topics = append(topics, title)
		}
	}
	return topics
}

func (f *Fetcher) download(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := f.pageClient.Do(req)
	if err != nil {
		if errors.Is(err, ErrBlockedAddress) {
			f.log.WithField("url", pageURL).Warn("Refused to fetch reference from non-public address")
		}
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch page: status code %d", res.StatusCode)
	}
	return io.ReadAll(io.LimitReader(res.Body, maxPageSize))
}

func extractKeywords(doc *goquery.Document) []string {
	var raw []string
	doc.Find(`meta[name="keywords"], meta[name="news_keywords"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			raw = append(raw, strings.Split(content, ",")...)
		}
	})
	doc.Find(`meta[property="article:tag"]`).Each(func(_ int, s *goquery.Selection) {
		if content, ok := s.Attr("content"); ok {
			raw = append(raw, content)
		}
	})

	seen := make(map[string]bool)
	var keywords []string
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		keywords = append(keywords, k)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

func pageTitle(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && strings.TrimSpace(og) != "" {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}
