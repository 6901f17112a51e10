package v1

import metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
)

type StatisticsSpec struct {
	// Mirror is the base url of the Debian archive,
	// e.g. http://ftp.uk.debian.org/debian
	Mirror    string `json:"mirror,omitempty"`
	Dist      string `json:"dist,omitempty"`
	Component string `json:"component,omitempty"`
	// Top is the number of packages to report.
	Top     int          `json:"top,omitempty"`
	Width   int          `json:"width,omitempty"`
	Workers int          `json:"workers,omitempty"`
	Output  OutputFormat `json:"output,omitempty"`
	// CacheDir keeps downloaded indices between runs
	// when set.
	CacheDir string `json:"cacheDir,omitempty"`
}

type Statistics struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	Spec StatisticsSpec `json:"spec"`
}
