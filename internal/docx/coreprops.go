// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

const corePropsPath = "docProps/core.xml"

type coreXML struct {
	XMLName  xml.Name `xml:"cp:coreProperties"`
	CP       string   `xml:"xmlns:cp,attr"`
	DC       string   `xml:"xmlns:dc,attr"`
	DCTerms  string   `xml:"xmlns:dcterms,attr"`
	DCMIType string   `xml:"xmlns:dcmitype,attr"`
	XSI      string   `xml:"xmlns:xsi,attr"`
	Title    string   `xml:"dc:title,omitempty"`
	Subject  string   `xml:"dc:subject,omitempty"`
	Creator  string   `xml:"dc:creator,omitempty"`
}

func marshalCoreProperties(p CoreProperties) ([]byte, error) {
	doc := coreXML{
		CP:       "http://schemas.openxmlformats.org/package/2006/metadata/core-properties",
		DC:       "http://purl.org/dc/elements/1.1/",
		DCTerms:  "http://purl.org/dc/terms/",
		DCMIType: "http://purl.org/dc/dcmitype/",
		XSI:      "http://www.w3.org/2001/XMLSchema-instance",
		Title:    p.Title,
		Subject:  p.Subject,
		Creator:  p.Author,
	}
	body, err := xml.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// setCoreProperties copies the package in data, replacing docProps/core.xml.
func setCoreProperties(data []byte, p CoreProperties) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("reading docx package: %w", err)
	}
	core, err := marshalCoreProperties(p)
	if err != nil {
		return nil, fmt.Errorf("encoding core properties: %w", err)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	written := false
	for _, f := range zr.File {
		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, err
		}
		if f.Name == corePropsPath {
			_, err = w.Write(core)
			written = true
		} else {
			err = copyEntry(w, f)
		}
		if err != nil {
			return nil, fmt.Errorf("copying %s: %w", f.Name, err)
		}
	}
	if !written {
		w, err := zw.Create(corePropsPath)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(core); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func copyEntry(w io.Writer, f *zip.File) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	_, err = io.Copy(w, rc)
	return err
}

// ReadCoreProperties returns the title, author and subject stored in a DOCX
// package.
func ReadCoreProperties(data []byte) (CoreProperties, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return CoreProperties{}, fmt.Errorf("reading docx package: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != corePropsPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return CoreProperties{}, err
		}
		defer rc.Close()
		var doc struct {
			Title   string `xml:"title"`
			Subject string `xml:"subject"`
			Creator string `xml:"creator"`
		}
		if err := xml.NewDecoder(rc).Decode(&doc); err != nil {
			return CoreProperties{}, fmt.Errorf("decoding core properties: %w", err)
		}
		return CoreProperties{Title: doc.Title, Author: doc.Creator, Subject: doc.Subject}, nil
	}
	return CoreProperties{}, nil
}
