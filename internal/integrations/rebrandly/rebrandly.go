// Package rebrandly is a thin client for the shortlink service, covering
// just what the shortlink sync needs: domain resolution and link CRUD.
package rebrandly

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"syncbot/internal/httpx"
)

const defaultBaseURL = "https://api.rebrandly.com"

type Client struct {
	APIKey  string
	BaseURL string // overridden in tests
}

func NewClient(apiKey string) *Client {
	return &Client{APIKey: apiKey, BaseURL: defaultBaseURL}
}

type Domain struct {
	ID       string `json:"id"`
	FullName string `json:"fullName"`
	Type     string `json:"type"`
}

type Link struct {
	ID          string `json:"id"`
	Slashtag    string `json:"slashtag"`
	Destination string `json:"destination"`
	Title       string `json:"title"`
}

// ResolveDomain picks the account's custom domain. With a name given it must
// exist on the account; without one there must be exactly one custom domain
// to choose from. Service domains (rebrand.ly itself) never count.
func (c *Client) ResolveDomain(name string) (Domain, error) {
	var domains []Domain
	if err := c.get("/v1/domains", &domains); err != nil {
		return Domain{}, err
	}

	var custom []Domain
	for _, d := range domains {
		if strings.EqualFold(d.Type, "service") {
			continue
		}
		custom = append(custom, d)
	}

	if name != "" {
		for _, d := range custom {
			if d.FullName == name {
				return d, nil
			}
		}
		return Domain{}, fmt.Errorf("domain %q not attached to account", name)
	}

	switch len(custom) {
	case 0:
		return Domain{}, fmt.Errorf("no custom domains attached to account")
	case 1:
		return custom[0], nil
	default:
		names := make([]string, len(custom))
		for i, d := range custom {
			names[i] = d.FullName
		}
		return Domain{}, fmt.Errorf("more than one domain on account, specify one of: %s", strings.Join(names, ", "))
	}
}

// Links lists every link on a domain.
func (c *Client) Links(domain Domain) ([]Link, error) {
	var links []Link
	path := fmt.Sprintf("/v1/links?domain.id=%s&limit=200", domain.ID)
	if err := c.get(path, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// LookupLink finds a link by slashtag, nil when absent.
func LookupLink(links []Link, slashtag string) *Link {
	for i := range links {
		if links[i].Slashtag == slashtag {
			return &links[i]
		}
	}
	return nil
}

func (c *Client) CreateLink(domain Domain, link Link) error {
	payload := map[string]any{
		"slashtag":    link.Slashtag,
		"destination": link.Destination,
		"title":       link.Title,
		"domain":      map[string]string{"id": domain.ID},
	}
	return c.post("/v1/links", payload)
}

func (c *Client) UpdateLink(link Link) error {
	payload := map[string]any{
		"slashtag":    link.Slashtag,
		"destination": link.Destination,
		"title":       link.Title,
	}
	return c.post("/v1/links/"+link.ID, payload)
}

func (c *Client) get(path string, out any) error {
	req, err := http.NewRequest("GET", c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.APIKey)

	resp, err := httpx.Client().Do(req)
	if err != nil {
		return fmt.Errorf("rebrandly request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rebrandly API returned %d: %s", resp.StatusCode, string(body))
	}
	return json.Unmarshal(body, out)
}

func (c *Client) post(path string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequest("POST", c.BaseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpx.Client().Do(req)
	if err != nil {
		return fmt.Errorf("rebrandly request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("rebrandly API returned %d: %s", resp.StatusCode, string(body))
	}
	return nil
}
