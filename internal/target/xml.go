package target

import (
	"encoding/xml"
	"fmt"
	"regexp"
)

var xmlPattern = regexp.MustCompile(`^(.+)\.xml$`)

// XMLTemplate returns the built-in template for <name>.xml files in the
// Java property-XML format:
//
//	<properties>
//	  <entry key="host">db.internal</entry>
//	</properties>
//
// A DOCTYPE declaration and <comment> element are tolerated and ignored.
func XMLTemplate() Template {
	return Template{pattern: xmlPattern, load: XMLLoader}
}

type xmlProperties struct {
	XMLName xml.Name   `xml:"properties"`
	Entries []xmlEntry `xml:"entry"`
}

type xmlEntry struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

// XMLLoader parses property-XML content. Duplicate keys resolve last-wins.
func XMLLoader(data []byte) (map[string]string, error) {
	var doc xmlProperties
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode property xml: %w", err)
	}

	context := make(map[string]string, len(doc.Entries))
	for _, entry := range doc.Entries {
		context[entry.Key] = entry.Value
	}
	return context, nil
}
