package download

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"
)

// Bands are the two IGN ortho source products: visible RGB and false-color
// infrared.
var Bands = []string{"RVB", "IRC"}

type Downloader struct {
	BaseDir string
	client  *http.Client
	retries int
}

// NewDownloader builds a downloader rooted at baseDir. When the
// ORTHO_TOKEN_URL, ORTHO_CLIENT_ID and ORTHO_CLIENT_SECRET environment
// variables are set, requests carry an OAuth2 client-credentials token;
// otherwise plain HTTP is used (the public IGN endpoints need none).
func NewDownloader(baseDir string) *Downloader {
	client := &http.Client{Timeout: 30 * time.Minute}

	tokenURL := os.Getenv("ORTHO_TOKEN_URL")
	clientID := os.Getenv("ORTHO_CLIENT_ID")
	clientSecret := os.Getenv("ORTHO_CLIENT_SECRET")
	if tokenURL != "" && clientID != "" && clientSecret != "" {
		config := &clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     tokenURL,
		}
		client = config.Client(context.Background())
	}

	return &Downloader{BaseDir: baseDir, client: client, retries: 10}
}

// LoadURLsFromFile parses a department/band/URL listing:
//
//	D074
//	RVB
//	https://data.geopf.fr/telechargement/download/...
//	IRC
//	https://data.geopf.fr/telechargement/download/...
//
// Blank lines and '#' comments are ignored.
func LoadURLsFromFile(urlsFile string) (map[string]map[string][]string, error) {
	data, err := os.ReadFile(urlsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read URLs file: %w", err)
	}

	urls := make(map[string]map[string][]string)
	var dept, band string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "D") && isDigits(line[1:]):
			dept = line
			if urls[dept] == nil {
				urls[dept] = make(map[string][]string)
			}
		case strings.EqualFold(line, "RVB") || strings.EqualFold(line, "IRC"):
			band = strings.ToUpper(line)
		case strings.HasPrefix(line, "http") && dept != "" && band != "":
			urls[dept][band] = append(urls[dept][band], line)
		}
	}
	return urls, nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// DownloadDepartment fetches every listed archive for one department and
// extracts zip archives in place. Existing files are skipped, so an
// interrupted run can be relaunched.
func (d *Downloader) DownloadDepartment(department string, urlsFile string) (map[string][]string, error) {
	urls, err := LoadURLsFromFile(urlsFile)
	if err != nil {
		return nil, err
	}
	deptKey := "D" + strings.Repeat("0", max(0, 3-len(department))) + department
	deptURLs, ok := urls[deptKey]
	if !ok {
		return nil, fmt.Errorf("department %s not found in URLs file", deptKey)
	}

	files := make(map[string][]string)
	for _, band := range Bands {
		bandDir := filepath.Join(d.BaseDir, department, band)
		if err := os.MkdirAll(bandDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create band directory: %w", err)
		}

		for _, url := range deptURLs[band] {
			dest := filepath.Join(bandDir, path.Base(url))
			if _, err := os.Stat(dest); err == nil {
				continue
			}
			if err := d.fetch(url, dest); err != nil {
				fmt.Printf("Warning: failed to download %s: %v\n", url, err)
				continue
			}
			if strings.HasSuffix(dest, ".zip") {
				if err := extractZip(dest, bandDir); err != nil {
					fmt.Printf("Warning: failed to extract %s: %v\n", dest, err)
				}
			}
		}

		listed, err := listRasterFiles(bandDir)
		if err != nil {
			return nil, err
		}
		files[band] = listed
	}
	return files, nil
}

func (d *Downloader) fetch(url, dest string) error {
	var lastErr error
	for attempt := 1; attempt <= d.retries; attempt++ {
		resp, err := d.client.Get(url)
		if err != nil {
			lastErr = err
			fmt.Printf("Attempt %d failed: %v\n", attempt, err)
			time.Sleep(5 * time.Second)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			if resp.StatusCode == http.StatusForbidden {
				return fmt.Errorf("unauthorized access, check your credentials")
			}
			fmt.Printf("Attempt %d failed: status %d\n", attempt, resp.StatusCode)
			time.Sleep(5 * time.Second)
			continue
		}

		tmp := dest + ".part"
		file, err := os.Create(tmp)
		if err != nil {
			resp.Body.Close()
			return err
		}
		_, err = io.Copy(file, resp.Body)
		file.Close()
		resp.Body.Close()
		if err != nil {
			os.Remove(tmp)
			lastErr = err
			continue
		}
		return os.Rename(tmp, dest)
	}
	return fmt.Errorf("failed to download after %d attempts: %v", d.retries, lastErr)
}

func extractZip(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		dest := filepath.Join(destDir, filepath.Clean(f.Name))
		if !strings.HasPrefix(dest, filepath.Clean(destDir)+string(os.PathSeparator)) {
			return fmt.Errorf("archive entry escapes destination: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(dest, 0755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		rc, err := f.Open()
		if err != nil {
			return err
		}
		out, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return err
		}
		_, err = io.Copy(out, rc)
		out.Close()
		rc.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func listRasterFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".jp2", ".tif", ".tiff":
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// BandStats summarizes what sits on disk for one department band.
type BandStats struct {
	FileCount   int
	TotalSizeGB float64
}

type DeptStats struct {
	Department string
	TotalFiles int
	Bands      map[string]BandStats
}

func (d *Downloader) Stats(department string) (DeptStats, error) {
	stats := DeptStats{Department: department, Bands: make(map[string]BandStats)}
	for _, band := range Bands {
		bandDir := filepath.Join(d.BaseDir, department, band)
		files, err := listRasterFiles(bandDir)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return stats, err
		}
		var size int64
		for _, f := range files {
			if fi, err := os.Stat(f); err == nil {
				size += fi.Size()
			}
		}
		stats.Bands[band] = BandStats{
			FileCount:   len(files),
			TotalSizeGB: float64(size) / (1024 * 1024 * 1024),
		}
		stats.TotalFiles += len(files)
	}
	return stats, nil
}
