package yaml

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/codelldb/lldb-dist/pkg/utils"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	yaml3 "gopkg.in/yaml.v3"
	"sigs.k8s.io/yaml"
)

func newUnicodeReader(r io.Reader) io.Reader {
	utf16bom := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	return transform.NewReader(r, utf16bom)
}

// ReadYamlFile decodes the first document of p into o. Unknown fields are
// rejected and structs are validated afterwards.
func ReadYamlFile(p string, o interface{}) error {
	r, err := os.Open(p)
	if err != nil {
		return fmt.Errorf("opening %v failed: %w", p, err)
	}
	defer r.Close()

	err = ReadYamlStream(r, o)
	if err != nil {
		return fmt.Errorf("unmarshalling %v failed: %w", p, err)
	}
	return nil
}

func ReadYamlString(s string, o interface{}) error {
	return ReadYamlStream(strings.NewReader(s), o)
}

func ReadYamlBytes(b []byte, o interface{}) error {
	return ReadYamlStream(bytes.NewReader(b), o)
}

func ReadYamlStream(r io.Reader, o interface{}) error {
	d := yaml3.NewDecoder(newUnicodeReader(r))
	d.KnownFields(true)

	err := d.Decode(o)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return ValidateStructs(o)
}

func WriteYamlString(o interface{}) (string, error) {
	b, err := WriteYamlBytes(o)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func WriteYamlBytes(o interface{}) ([]byte, error) {
	w := bytes.NewBuffer(nil)
	enc := yaml3.NewEncoder(w)
	enc.SetIndent(2)
	err := enc.Encode(o)
	if err != nil {
		return nil, err
	}
	err = enc.Close()
	if err != nil {
		return nil, err
	}
	return w.Bytes(), nil
}

func WriteYamlFile(p string, o interface{}) error {
	b, err := WriteYamlBytes(o)
	if err != nil {
		return err
	}
	return os.WriteFile(p, b, 0o644)
}

// WriteJsonString renders o as JSON, honoring the yaml tags of o.
func WriteJsonString(o interface{}) (string, error) {
	b, err := WriteYamlBytes(o)
	if err != nil {
		return "", err
	}
	b, err = yaml.YAMLToJSON(b)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FixPathExt returns p, or its .yml/.yaml sibling if only that one exists.
func FixPathExt(p string) string {
	if utils.Exists(p) {
		return p
	}
	var p2 string
	if strings.HasSuffix(p, ".yml") {
		p2 = p[:len(p)-4] + ".yaml"
	} else if strings.HasSuffix(p, ".yaml") {
		p2 = p[:len(p)-5] + ".yml"
	} else {
		return p
	}

	if utils.Exists(p2) {
		return p2
	}
	return p
}
