package aptyum

import (
	"compress/gzip"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
)

// repomd mirrors the subset of repodata/repomd.xml tsumugu needs: the
// location of the primary.xml(.gz) index.
type repomd struct {
	XMLName xml.Name     `xml:"repomd"`
	Data    []repomdData `xml:"data"`
}

type repomdData struct {
	Type     string `xml:"type,attr"`
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
}

// primaryMetadata mirrors the subset of primary.xml.gz needed to verify
// package checksums: one <package> entry per RPM, each with a relative
// Location, claimed Size, and SHA256 Checksum.
type primaryMetadata struct {
	XMLName  xml.Name         `xml:"metadata"`
	Packages []primaryPackage `xml:"package"`
}

type primaryPackage struct {
	Location struct {
		Href string `xml:"href,attr"`
	} `xml:"location"`
	Checksum struct {
		Type  string `xml:"type,attr"`
		Value string `xml:",chardata"`
	} `xml:"checksum"`
	Size struct {
		Package int64 `xml:"package,attr"`
	} `xml:"size"`
}

func findPrimaryHref(data []repomdData) (string, bool) {
	for _, d := range data {
		if d.Type == "primary" {
			return d.Location.Href, true
		}
	}
	return "", false
}

// VerifyRepomd implements spec §4.6's RPM integrity check: parse
// repodata/repomd.xml to find primary.xml.gz, parse that for every
// package's size/sha256, and confirm the mirrored file under localRoot
// matches.
func VerifyRepomd(localRoot, repodataDir string) (*Result, error) {
	repomdPath := filepath.Join(repodataDir, "repomd.xml")
	repomdFile, err := os.Open(repomdPath)
	if err != nil {
		return nil, err
	}
	var rm repomd
	decodeErr := xml.NewDecoder(repomdFile).Decode(&rm)
	repomdFile.Close()
	if decodeErr != nil {
		return nil, decodeErr
	}

	href, ok := findPrimaryHref(rm.Data)
	if !ok {
		return nil, fmt.Errorf("repomd.xml: no primary data entry")
	}

	// href is relative to the repository root (the directory repodata/
	// itself lives under), not to repodataDir.
	primaryPath := filepath.Join(repodataDir, "..", filepath.FromSlash(href))
	primaryFile, err := os.Open(primaryPath)
	if err != nil {
		return nil, err
	}
	defer primaryFile.Close()

	gz, err := gzip.NewReader(primaryFile)
	if err != nil {
		return nil, err
	}
	defer gz.Close()

	var meta primaryMetadata
	if err := xml.NewDecoder(gz).Decode(&meta); err != nil {
		return nil, err
	}

	result := &Result{}
	for _, p := range meta.Packages {
		result.Checked++
		local := filepath.Join(localRoot, filepath.FromSlash(p.Location.Href))
		sha := ""
		if p.Checksum.Type == "sha256" {
			sha = p.Checksum.Value
		}
		if err := checkLocalFile(local, p.Size.Package, sha); err != nil {
			result.fail(p.Location.Href, err.Error())
		}
	}
	return result, nil
}
