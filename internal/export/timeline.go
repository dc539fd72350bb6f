package export

import (
	"encoding/xml"
	"fmt"

	"github.com/voxgrep/voxgrep/internal/supercut"
)

// timelineDoc is the XML interchange document: each clip as a (source,
// in-point, out-point, timeline offset) tuple plus the clip text, enough for
// an NLE importer to rebuild the cut losslessly.
type timelineDoc struct {
	XMLName  xml.Name       `xml:"timeline"`
	Name     string         `xml:"name,attr"`
	Duration string         `xml:"duration,attr"`
	Clips    []timelineClip `xml:"clip"`
}

type timelineClip struct {
	Source  string `xml:"src,attr"`
	In      string `xml:"in,attr"`
	Out     string `xml:"out,attr"`
	Offset  string `xml:"offset,attr"`
	Content string `xml:",chardata"`
}

// GenerateTimelineXML renders the plan as an XML timeline document.
func GenerateTimelineXML(plan *supercut.ExportPlan, name string) (string, error) {
	doc := timelineDoc{
		Name:     name,
		Duration: formatSeconds(plan.TotalDuration),
	}

	var offset float64
	for _, clip := range plan.Clips() {
		doc.Clips = append(doc.Clips, timelineClip{
			Source:  clip.File,
			In:      formatSeconds(clip.Start),
			Out:     formatSeconds(clip.End),
			Offset:  formatSeconds(offset),
			Content: clip.Content,
		})
		offset += clip.Duration()
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal timeline: %w", err)
	}
	return xml.Header + string(out) + "\n", nil
}

func formatSeconds(sec float64) string {
	return fmt.Sprintf("%.3f", sec)
}
