// Package chart materializes and maintains the Helm chart the pipeline
// publishes. A missing chart is scaffolded from scratch; an existing chart
// is updated surgically — the image coordinates and version fields change,
// every other byte is preserved. The update path is deliberately
// line-oriented rather than a YAML round-trip: a structural re-serialize
// could reorder or reformat keys the operator wrote by hand.
package chart

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Metadata mirrors the Chart.yaml fields this tool reads and writes.
type Metadata struct {
	APIVersion  string `yaml:"apiVersion"`
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Version     string `yaml:"version"`
	AppVersion  string `yaml:"appVersion,omitempty"`
	Home        string `yaml:"home,omitempty"`
}

const (
	manifestFile = "Chart.yaml"
	valuesFile   = "values.yaml"
)

var (
	repositoryRe = regexp.MustCompile(`(?m)^(\s*repository:\s*).*$`)
	tagRe        = regexp.MustCompile(`(?m)^(\s*tag:\s*).*$`)
	imageBlockRe = regexp.MustCompile(`(?m)^(image:\s*\n)`)
	versionRe    = regexp.MustCompile(`(?m)^(version:\s*).*$`)
	appVersionRe = regexp.MustCompile(`(?m)^(appVersion:\s*).*$`)
)

// Ensure makes the chart at chartDir exist and carry the run's image
// coordinates. Returns created=true when the chart was scaffolded from
// scratch. After Ensure, values.yaml's repository and tag equal imageRepo
// and imageTag, and Chart.yaml's version tracks imageTag.
func Ensure(chartDir, imageRepo, imageTag, appVersion string) (created bool, err error) {
	manifest := filepath.Join(chartDir, manifestFile)
	if _, statErr := os.Stat(manifest); os.IsNotExist(statErr) {
		if err := Scaffold(chartDir, imageRepo, imageTag, appVersion); err != nil {
			return false, err
		}
		return true, nil
	}

	if err := updateValues(filepath.Join(chartDir, valuesFile), imageRepo, imageTag); err != nil {
		return false, err
	}
	if err := updateManifest(manifest, imageTag, appVersion); err != nil {
		return false, err
	}
	return false, nil
}

// Scaffold writes a minimal chart: manifest, values, and one deployable
// Job template rendering the image reference and env map from values.
func Scaffold(chartDir, imageRepo, imageTag, appVersion string) error {
	name := filepath.Base(chartDir)
	templates := filepath.Join(chartDir, "templates")
	if err := os.MkdirAll(templates, 0o755); err != nil {
		return fmt.Errorf("creating chart directories: %w", err)
	}

	manifest := fmt.Sprintf(`apiVersion: v2
name: %s
description: Packaged by chartferry
type: application
version: %s
appVersion: "%s"
`, name, imageTag, appVersion)

	values := fmt.Sprintf(`image:
  repository: %s
  tag: "%s"
  pullPolicy: IfNotPresent

env: {}
`, imageRepo, imageTag)

	job := fmt.Sprintf(`apiVersion: batch/v1
kind: Job
metadata:
  name: %s
spec:
  backoffLimit: 0
  template:
    spec:
      restartPolicy: Never
      containers:
        - name: %s
          image: "{{ .Values.image.repository }}:{{ .Values.image.tag }}"
          imagePullPolicy: {{ .Values.image.pullPolicy }}
          env:
            {{- range $name, $value := .Values.env }}
            - name: {{ $name }}
              value: {{ $value | quote }}
            {{- end }}
`, name, name)

	files := map[string]string{
		filepath.Join(chartDir, manifestFile): manifest,
		filepath.Join(chartDir, valuesFile):   values,
		filepath.Join(templates, "job.yaml"):  job,
	}
	for path, content := range files {
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	return nil
}

// updateValues rewrites exactly the repository and tag values in place.
// Keys that are missing get appended (repository inside a fresh image
// block, tag right under the image key), matching how the original chart
// layouts grow these fields.
func updateValues(path, imageRepo, imageTag string) error {
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	txt := string(data) // missing file grows from empty

	if repositoryRe.MatchString(txt) {
		txt = repositoryRe.ReplaceAllString(txt, "${1}"+imageRepo)
	} else {
		txt += fmt.Sprintf("\nimage:\n  repository: %s\n", imageRepo)
	}

	if tagRe.MatchString(txt) {
		txt = tagRe.ReplaceAllString(txt, fmt.Sprintf(`${1}"%s"`, imageTag))
	} else {
		txt = imageBlockRe.ReplaceAllString(txt, fmt.Sprintf("${1}  tag: \"%s\"\n", imageTag))
	}

	return os.WriteFile(path, []byte(txt), 0o644)
}

// updateManifest keeps Chart.yaml's version and appVersion in lockstep
// with the run, with the same line-surgery contract as updateValues.
func updateManifest(path, version, appVersion string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	txt := string(data)

	if versionRe.MatchString(txt) {
		txt = versionRe.ReplaceAllString(txt, "${1}"+version)
	} else {
		txt += fmt.Sprintf("version: %s\n", version)
	}
	if appVersionRe.MatchString(txt) {
		txt = appVersionRe.ReplaceAllString(txt, fmt.Sprintf(`${1}"%s"`, appVersion))
	} else {
		txt += fmt.Sprintf("appVersion: \"%s\"\n", appVersion)
	}

	return os.WriteFile(path, []byte(txt), 0o644)
}

// ReadMetadata parses the chart manifest.
func ReadMetadata(chartDir string) (*Metadata, error) {
	data, err := os.ReadFile(filepath.Join(chartDir, manifestFile))
	if err != nil {
		return nil, fmt.Errorf("reading chart manifest: %w", err)
	}
	var m Metadata
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing chart manifest: %w", err)
	}
	return &m, nil
}
