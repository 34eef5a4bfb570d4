package export

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/savegress/outcomesync/internal/instrument"
	"github.com/savegress/outcomesync/pkg/models"
)

// overallScoreKeys name the single score each Avatar option batch carries.
var overallScoreKeys = map[instrument.Instrument]string{
	instrument.DERS: "ders_overall",
	instrument.ARI:  "ari",
	instrument.DTS:  "dts_overall",
	instrument.CAMM: "camm",
}

// WriteXMLBatches writes one Avatar option batch document per instrument
// that has an XML import form. Each document is built from scratch per
// call; nothing is shared between batches.
func WriteXMLBatches(dir string, asOf time.Time, scored []models.ScoredRecord) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var paths []string
	for _, code := range instrument.All {
		meta, _ := instrument.Lookup(code)
		if meta.OptionIdentifier == "" {
			continue
		}

		doc, err := buildBatch(meta, scored)
		if err != nil {
			return paths, err
		}

		path := filepath.Join(dir, fmt.Sprintf("%s_batch_%s.xml", meta.FilePrefix, asOf.Format(fileDateFormat)))
		if err := os.WriteFile(path, doc, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// buildBatch renders one instrument's option document:
//
//	<option>
//	  <optionidentifier>USER119</optionidentifier>
//	  <optiondata>
//	    <PATID>...</PATID>
//	    <EPISODE_NUMBER>...</EPISODE_NUMBER>
//	    <SYSTEM.DERS_16>...</SYSTEM.DERS_16>
//	  </optiondata>
//	  ...
//	</option>
//
// The system tag name varies per instrument, so the document is assembled
// from tokens rather than struct tags.
func buildBatch(meta instrument.Meta, scored []models.ScoredRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "\t")

	option := xml.StartElement{Name: xml.Name{Local: "option"}}
	if err := enc.EncodeToken(option); err != nil {
		return nil, err
	}
	if err := encodeLeaf(enc, "optionidentifier", meta.OptionIdentifier); err != nil {
		return nil, err
	}

	for _, rec := range scored {
		data := xml.StartElement{Name: xml.Name{Local: "optiondata"}}
		if err := enc.EncodeToken(data); err != nil {
			return nil, err
		}
		if err := encodeLeaf(enc, "PATID", rec.Episode.PatientID); err != nil {
			return nil, err
		}
		if err := encodeLeaf(enc, "EPISODE_NUMBER", rec.Episode.EpisodeNumber); err != nil {
			return nil, err
		}
		if err := encodeLeaf(enc, meta.SystemTag, formatCell(rec.Scores, overallScoreKeys[meta.Code])); err != nil {
			return nil, err
		}
		if err := enc.EncodeToken(data.End()); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(option.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), buf.Bytes()...), nil
}

func encodeLeaf(enc *xml.Encoder, name, value string) error {
	el := xml.StartElement{Name: xml.Name{Local: name}}
	if err := enc.EncodeToken(el); err != nil {
		return err
	}
	if err := enc.EncodeToken(xml.CharData(value)); err != nil {
		return err
	}
	return enc.EncodeToken(el.End())
}
