package target

import (
	"fmt"
	"regexp"

	"github.com/getsops/sops/v3/decrypt"
	"gopkg.in/yaml.v3"
)

var secretsPattern = regexp.MustCompile(`^(.+)\.secrets\.ya?ml$`)

// SecretsTemplate returns a template for <name>.secrets.yaml files
// encrypted with sops. Decrypted YAML is flattened into string properties,
// nested keys joined with dots. Register it after the built-ins so an
// encrypted context overrides a plain one of the same name.
func SecretsTemplate() Template {
	return Template{pattern: secretsPattern, load: SecretsLoader}
}

// SecretsLoader decrypts sops-encrypted YAML and flattens the document
// into a property mapping.
func SecretsLoader(data []byte) (map[string]string, error) {
	plaintext, err := decrypt.Data(data, "yaml")
	if err != nil {
		return nil, fmt.Errorf("sops decrypt: %w", err)
	}

	var doc map[string]any
	if err := yaml.Unmarshal(plaintext, &doc); err != nil {
		return nil, fmt.Errorf("parse decrypted yaml: %w", err)
	}

	context := make(map[string]string)
	flattenValue("", doc, context)
	return context, nil
}

// flattenValue folds nested maps and lists into dotted keys with scalar
// string values.
func flattenValue(prefix string, value any, out map[string]string) {
	switch v := value.(type) {
	case map[string]any:
		for key, child := range v {
			joined := key
			if prefix != "" {
				joined = prefix + "." + key
			}
			flattenValue(joined, child, out)
		}
	case []any:
		for i, child := range v {
			flattenValue(fmt.Sprintf("%s.%d", prefix, i), child, out)
		}
	case nil:
		out[prefix] = ""
	default:
		out[prefix] = fmt.Sprintf("%v", v)
	}
}
