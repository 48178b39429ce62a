// Package gsheet talks to Google Sheets two ways: reading a worksheet via
// its public CSV export, and writing cells back through the values API.
package gsheet

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"syncbot/internal/httpx"
	"syncbot/internal/sheet"
)

var gsheetURLRe = regexp.MustCompile(`https://docs\.google\.com/(?:spreadsheets|document)/d/([\w_-]+)/(?:edit|view)?(?:\?[^#]*)?(?:#gid=([0-9]+))?`)

// ParseURL extracts the spreadsheet key and worksheet gid from a sharing
// URL. A URL without a gid fragment addresses the first worksheet (gid 0).
func ParseURL(rawURL string) (key, gid string, err error) {
	m := gsheetURLRe.FindStringSubmatch(rawURL)
	if m == nil || m[1] == "" {
		return "", "", fmt.Errorf("could not parse spreadsheet key from url %q", rawURL)
	}
	gid = m[2]
	if gid == "" {
		gid = "0"
	}
	return m[1], gid, nil
}

// Worksheet is a fetched sheet plus the metadata needed to write back to it
// and to confirm with the operator which document was touched.
type Worksheet struct {
	Sheet *sheet.Sheet
	Key   string
	GID   string
	Title string // worksheet title, from the export's download filename
}

// Fetch downloads and parses the CSV export of a worksheet.
func Fetch(sheetURL string) (*Worksheet, error) {
	key, gid, err := ParseURL(sheetURL)
	if err != nil {
		return nil, err
	}

	csvURL := fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/export?format=csv&id=%s&gid=%s", key, key, gid)
	resp, err := httpx.Client().Get(csvURL)
	if err != nil {
		return nil, fmt.Errorf("fetching sheet export: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("sheet export returned %d (is the sheet shared publicly?)", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading sheet export: %w", err)
	}

	s, err := sheet.ParseCSV(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	return &Worksheet{
		Sheet: s,
		Key:   key,
		GID:   gid,
		Title: titleFromContentDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

// The export names its download after the worksheet, in the RFC 5987
// charset'lang'value form.
var extFilenameRe = regexp.MustCompile(`filename\*=[^']*'[^']*'([^;]+)`)

// titleFromContentDisposition recovers the worksheet title from the export's
// download filename. Best effort: a missing or mangled header just yields "".
func titleFromContentDisposition(header string) string {
	if header == "" {
		return ""
	}

	filename := ""
	if m := extFilenameRe.FindStringSubmatch(header); m != nil {
		filename = m[1]
		if decoded, err := url.QueryUnescape(filename); err == nil {
			filename = decoded
		}
	} else if _, params, err := mime.ParseMediaType(header); err == nil {
		filename = params["filename"]
	}
	if filename == "" {
		return ""
	}
	return strings.TrimSuffix(strings.Trim(filename, `"`), ".csv")
}

// CellWrite addresses one cell by worksheet position, both 1-based.
type CellWrite struct {
	Row    int
	Column int
	Value  string
}

// Writer applies computed cell changes and row appends to a worksheet. The
// live implementation talks to the values API; DryRun records what would
// have been written.
type Writer interface {
	UpdateCell(ws *Worksheet, w CellWrite) error
	AppendRow(ws *Worksheet, values []string) error
}

// APIWriter writes through the Sheets values endpoint with a bearer token.
type APIWriter struct {
	Token   string
	BaseURL string // overridden in tests

	titles map[string]string // spreadsheet key + gid -> worksheet title
}

func NewAPIWriter(token string) *APIWriter {
	return &APIWriter{Token: token, BaseURL: "https://sheets.googleapis.com"}
}

func (a *APIWriter) UpdateCell(ws *Worksheet, w CellWrite) error {
	rangeRef, err := a.rangeRef(ws, fmt.Sprintf("%s%d", ColumnLetter(w.Column), w.Row))
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s?valueInputOption=RAW",
		a.BaseURL, ws.Key, url.PathEscape(rangeRef))
	body := map[string]any{"values": [][]string{{w.Value}}}
	return a.send("PUT", endpoint, body)
}

func (a *APIWriter) AppendRow(ws *Worksheet, values []string) error {
	rangeRef, err := a.rangeRef(ws, "A1")
	if err != nil {
		return err
	}
	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s/values/%s:append?valueInputOption=RAW",
		a.BaseURL, ws.Key, url.PathEscape(rangeRef))
	body := map[string]any{"values": [][]string{values}}
	return a.send("POST", endpoint, body)
}

// rangeRef qualifies a cell reference with the worksheet's title. An
// unqualified range is resolved by the values API against the spreadsheet's
// first sheet, which is the wrong tab whenever the URL carries a gid.
func (a *APIWriter) rangeRef(ws *Worksheet, cellRef string) (string, error) {
	title, err := a.sheetTitle(ws)
	if err != nil {
		return "", err
	}
	quoted := strings.ReplaceAll(title, "'", "''")
	return fmt.Sprintf("'%s'!%s", quoted, cellRef), nil
}

// sheetTitle resolves the worksheet title for the worksheet's gid from the
// spreadsheet metadata, cached per spreadsheet+gid.
func (a *APIWriter) sheetTitle(ws *Worksheet) (string, error) {
	cacheKey := ws.Key + "#" + ws.GID
	if title, ok := a.titles[cacheKey]; ok {
		return title, nil
	}

	endpoint := fmt.Sprintf("%s/v4/spreadsheets/%s?fields=sheets.properties", a.BaseURL, ws.Key)
	req, err := http.NewRequest("GET", endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)

	resp, err := httpx.Client().Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching spreadsheet metadata: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("sheets API returned %d: %s", resp.StatusCode, string(respBody))
	}

	var meta struct {
		Sheets []struct {
			Properties struct {
				SheetID int64  `json:"sheetId"`
				Title   string `json:"title"`
			} `json:"properties"`
		} `json:"sheets"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&meta); err != nil {
		return "", fmt.Errorf("decoding spreadsheet metadata: %w", err)
	}

	gid, err := strconv.ParseInt(ws.GID, 10, 64)
	if err != nil {
		return "", fmt.Errorf("bad worksheet gid %q: %w", ws.GID, err)
	}
	for _, s := range meta.Sheets {
		if s.Properties.SheetID == gid {
			if a.titles == nil {
				a.titles = make(map[string]string)
			}
			a.titles[cacheKey] = s.Properties.Title
			return s.Properties.Title, nil
		}
	}
	return "", fmt.Errorf("spreadsheet %s has no worksheet with gid %s", ws.Key, ws.GID)
}

func (a *APIWriter) send(method, endpoint string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequest(method, endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.Token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpx.Client().Do(req)
	if err != nil {
		return fmt.Errorf("writing to sheet: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("sheets API returned %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// DryRun satisfies Writer without touching the network, recording every
// would-be write so callers can report them. This is the no-op mode stand-in
// for the live writer.
type DryRun struct {
	Cells   []CellWrite
	Appends [][]string
}

func (d *DryRun) UpdateCell(_ *Worksheet, w CellWrite) error {
	d.Cells = append(d.Cells, w)
	return nil
}

func (d *DryRun) AppendRow(_ *Worksheet, values []string) error {
	appended := make([]string, len(values))
	copy(appended, values)
	d.Appends = append(d.Appends, appended)
	return nil
}

// ColumnLetter converts a 1-based column number to its A1 letter form.
func ColumnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
