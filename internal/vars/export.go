package vars

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

// Target selects the output format for exported variables.
type Target string

const (
	// TargetPipeline writes Azure Pipelines task.setvariable logging commands.
	TargetPipeline Target = "pipeline"
	// TargetDotenv writes NAME=VALUE lines with shell-safe quoting.
	TargetDotenv Target = "dotenv"
	// TargetEnv sets the variables in the current process environment and
	// echoes what was set, masking secret values.
	TargetEnv Target = "env"
	// TargetJSON writes a flat JSON object of name/value pairs.
	TargetJSON Target = "json"
	// TargetTemplate renders a user-supplied text/template with the sprig
	// function map; the template receives the ordered variable list.
	TargetTemplate Target = "template"
)

// maskedValue replaces secret values when a target echoes them.
const maskedValue = "[REDACTED]"

// Targets lists the valid export targets.
func Targets() []Target {
	return []Target{TargetPipeline, TargetDotenv, TargetEnv, TargetJSON, TargetTemplate}
}

// ExportOptions configures Export.
type ExportOptions struct {
	Target Target

	// Template is the template source, required for TargetTemplate.
	Template string
}

// Export writes the variables to w in the format selected by opts.Target.
func Export(w io.Writer, variables []Variable, opts ExportOptions) error {
	switch opts.Target {
	case TargetPipeline:
		return exportPipeline(w, variables)
	case TargetDotenv:
		return exportDotenv(w, variables)
	case TargetEnv:
		return exportEnv(w, variables)
	case TargetJSON:
		return exportJSON(w, variables)
	case TargetTemplate:
		return exportTemplate(w, variables, opts.Template)
	default:
		names := make([]string, 0, len(Targets()))
		for _, t := range Targets() {
			names = append(names, string(t))
		}
		return fmt.Errorf("unknown export target %q: valid targets are %s", opts.Target, strings.Join(names, ", "))
	}
}

// exportPipeline writes one task.setvariable logging command per variable.
// See https://learn.microsoft.com/azure/devops/pipelines/scripts/logging-commands
func exportPipeline(w io.Writer, variables []Variable) error {
	for _, v := range variables {
		line := fmt.Sprintf("##vso[task.setvariable variable=%s;issecret=%t]%s\n",
			escapeLoggingProperty(v.Name), v.Secret, escapeLoggingData(v.Value))
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}

// escapeLoggingData escapes the value portion of a logging command so
// multi-line values survive the line-oriented protocol.
func escapeLoggingData(s string) string {
	s = strings.ReplaceAll(s, "%", "%AZP25")
	s = strings.ReplaceAll(s, "\r", "%0D")
	s = strings.ReplaceAll(s, "\n", "%0A")
	return s
}

// escapeLoggingProperty escapes a property value inside the bracketed
// section of a logging command.
func escapeLoggingProperty(s string) string {
	s = escapeLoggingData(s)
	s = strings.ReplaceAll(s, "]", "%5D")
	s = strings.ReplaceAll(s, ";", "%3B")
	return s
}

func exportDotenv(w io.Writer, variables []Variable) error {
	for _, v := range variables {
		if _, err := fmt.Fprintf(w, "%s=%s\n", v.Name, quoteDotenvValue(v.Value)); err != nil {
			return err
		}
	}
	return nil
}

// quoteDotenvValue wraps the value in double quotes when it contains
// characters that would break NAME=VALUE parsing.
func quoteDotenvValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " \t\n\r\"'\\#$") {
		return value
	}
	replacer := strings.NewReplacer(
		`\`, `\\`,
		`"`, `\"`,
		"\n", `\n`,
		"\r", `\r`,
	)
	return `"` + replacer.Replace(value) + `"`
}

func exportEnv(w io.Writer, variables []Variable) error {
	for _, v := range variables {
		if err := os.Setenv(v.Name, v.Value); err != nil {
			return fmt.Errorf("failed to set %s: %w", v.Name, err)
		}
		echoed := v.Value
		if v.Secret {
			echoed = maskedValue
		}
		if _, err := fmt.Fprintf(w, "%s=%s\n", v.Name, echoed); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(w io.Writer, variables []Variable) error {
	flat := make(map[string]string, len(variables))
	for _, v := range variables {
		flat[v.Name] = v.Value
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(flat)
}

func exportTemplate(w io.Writer, variables []Variable, source string) error {
	if source == "" {
		return fmt.Errorf("template target requires a template")
	}

	tmpl, err := template.New("export").Funcs(sprig.TxtFuncMap()).Parse(source)
	if err != nil {
		return fmt.Errorf("invalid template: %w", err)
	}

	if err := tmpl.Execute(w, variables); err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	return nil
}
