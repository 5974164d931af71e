package fetch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/mediverifyng/mediverify/pkg/catalog"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0"

// Client returns an HTTP client with retries suitable for registry
// endpoints that rate-limit or flake.
func Client() *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = 3
	rc.RetryWaitMin = 1 * time.Second
	rc.RetryWaitMax = 10 * time.Second
	rc.Logger = nil
	return rc.StandardClient()
}

func get(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s: HTTP %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// FromJSON downloads a JSON registry export and extracts catalog records
// from its "records" array.
func FromJSON(ctx context.Context, client *http.Client, url string) ([]catalog.Record, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return ParseJSON(body)
}

// ParseJSON extracts records from a registry JSON payload.
func ParseJSON(body []byte) ([]catalog.Record, error) {
	items := gjson.GetBytes(body, "records")
	if !items.Exists() {
		return nil, fmt.Errorf("no records array in response")
	}

	var out []catalog.Record
	for _, item := range items.Array() {
		rec := catalog.Record{
			Code:         catalog.NormalizeCode(gjson.Get(item.Raw, "nafdac_number").String()),
			DrugName:     strings.TrimSpace(gjson.Get(item.Raw, "drug_name").String()),
			Manufacturer: strings.TrimSpace(gjson.Get(item.Raw, "manufacturer").String()),
			Status:       strings.TrimSpace(gjson.Get(item.Raw, "status").String()),
		}
		if rec.Code == "" {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// FromHTML downloads a greenbook-style listing page and scrapes the first
// table whose header carries the expected columns.
func FromHTML(ctx context.Context, client *http.Client, url string) ([]catalog.Record, error) {
	body, err := get(ctx, client, url)
	if err != nil {
		return nil, err
	}
	return ParseHTML(strings.NewReader(string(body)))
}

// ParseHTML scrapes catalog records out of an HTML listing page. Column
// order follows the table header; tables without a recognizable header are
// skipped.
func ParseHTML(r io.Reader) ([]catalog.Record, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var out []catalog.Record
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		cols := map[string]int{}
		table.Find("tr").First().Find("th, td").Each(func(i int, cell *goquery.Selection) {
			name := strings.ToLower(strings.TrimSpace(cell.Text()))
			name = strings.ReplaceAll(name, " ", "_")
			cols[name] = i
		})
		if _, ok := cols["nafdac_number"]; !ok {
			return true // not the listing table, keep looking
		}

		table.Find("tr").Each(func(i int, row *goquery.Selection) {
			if i == 0 {
				return
			}
			cells := row.Find("td").Map(func(_ int, c *goquery.Selection) string {
				return strings.TrimSpace(c.Text())
			})
			pick := func(name string) string {
				idx, ok := cols[name]
				if !ok || idx >= len(cells) {
					return ""
				}
				return cells[idx]
			}
			rec := catalog.Record{
				Code:         catalog.NormalizeCode(pick("nafdac_number")),
				DrugName:     pick("drug_name"),
				Manufacturer: pick("manufacturer"),
				Status:       pick("status"),
			}
			if rec.Code != "" {
				out = append(out, rec)
			}
		})
		return false
	})

	if len(out) == 0 {
		return nil, fmt.Errorf("no catalog table found in page")
	}
	return out, nil
}

// WriteCSV writes records as the catalog CSV the loader consumes.
func WriteCSV(path string, records []catalog.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"nafdac_number", "drug_name", "manufacturer", "status"}); err != nil {
		return err
	}
	for _, rec := range records {
		if err := w.Write([]string{rec.Code, rec.DrugName, rec.Manufacturer, rec.Status}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Sync()
}
