package main

import (
	"archive/zip"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/scylladb/go-set/strset"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

const manifestName = "AndroidManifest.xml"

var (
	keyFiles    = []string{manifestName, "resources.arsc", "classes.dex"}
	commonFiles = []string{"strings.xml", "colors.xml", "styles.xml"}
)

func isLayout(name string) bool {
	return strings.HasPrefix(name, "res/layout/") && strings.HasSuffix(name, ".xml")
}

// isImage matches on directory prefix only, so non-image files under
// drawable and mipmap directories are included.
func isImage(name string) bool {
	return strings.HasPrefix(name, "res/drawable") || strings.HasPrefix(name, "res/mipmap")
}

func isAsset(name string) bool {
	return strings.HasPrefix(name, "assets/")
}

// CommonMatch lists the entries whose path contains Name anywhere.
type CommonMatch struct {
	Name  string
	Files []string
}

// Result carries the report together with facts about the run that are not
// part of the report file.
type Result struct {
	Report     *Report
	ReportPath string
	Written    bool

	MIME      string
	ZipLike   bool
	Entries   int
	Extracted int
	Skipped   []string
	KeyFiles  map[string]bool
	Common    []CommonMatch

	// Err is nil, an *AnalysisError, a report write error, or both combined.
	Err error
}

func (r *Result) Failed() bool {
	return r.Err != nil
}

type Inspector struct {
	fs  afero.Fs
	log logrus.FieldLogger
}

func NewInspector(fs afero.Fs, log logrus.FieldLogger) *Inspector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Inspector{fs: fs, log: log}
}

// Inspect extracts archivePath into outputDir, classifies its entries and
// writes outputDir/analysis_report.json. The report is written even when the
// archive cannot be read; the failure is returned on Result.Err.
func (in *Inspector) Inspect(archivePath, outputDir string) *Result {
	log := in.log.WithField("archive", archivePath)
	log.Infof("Analyzing APK: %s", archivePath)

	res := &Result{
		Report:     NewReport(),
		ReportPath: filepath.Join(outputDir, reportFilename),
		KeyFiles:   make(map[string]bool),
	}
	if err := in.fs.MkdirAll(outputDir, 0755); err != nil {
		res.Err = errors.Wrapf(err, "create output directory %s", outputDir)
		return res
	}

	if aerr := in.analyze(archivePath, outputDir, res, log); aerr != nil {
		log.WithField("stage", aerr.Stage).Errorf("Error analyzing APK: %v", aerr.Err)
		res.Err = aerr
	}

	if err := writeReport(in.fs, res.ReportPath, res.Report); err != nil {
		log.WithError(err).Error("failed to save analysis report")
		if res.Err != nil {
			res.Err = multierror.Append(res.Err, err)
		} else {
			res.Err = err
		}
		return res
	}
	res.Written = true
	return res
}

func (in *Inspector) analyze(archivePath, outputDir string, res *Result, log logrus.FieldLogger) *AnalysisError {
	f, err := in.fs.Open(archivePath)
	if err != nil {
		return newAnalysisError(StageOpen, archivePath, err)
	}
	defer closeAndLog(f, archivePath, log)

	info, err := f.Stat()
	if err != nil {
		return newAnalysisError(StageOpen, archivePath, err)
	}
	log.Debugf("archive size: %s", formatSize(info))

	res.MIME, res.ZipLike = sniffArchive(f)
	log.WithField("mime", res.MIME).Debug("detected archive content type")

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return newAnalysisError(StageRead, archivePath, err)
	}

	names := entryNames(zr.File)
	res.Entries = len(names)
	log.Infof("Total files in APK: %d", len(names))

	res.Extracted, res.Skipped, err = extractEntries(in.fs, zr.File, outputDir, log)
	if err != nil {
		return newAnalysisError(StageExtract, archivePath, err)
	}

	res.KeyFiles = keyFilePresence(names)
	for _, name := range keyFiles {
		if res.KeyFiles[name] {
			log.Infof("Found %s", name)
		} else {
			log.Debugf("%s not present", name)
		}
	}

	res.Report.Resources.Layouts = filterEntries(names, isLayout)
	log.Infof("Found %d layout files", len(res.Report.Resources.Layouts))

	res.Report.Resources.Images = filterEntries(names, isImage)
	log.Infof("Found %d image resources", len(res.Report.Resources.Images))

	res.Report.Assets = filterEntries(names, isAsset)
	log.Infof("Found %d asset files", len(res.Report.Assets))

	res.Common = commonFilePresence(names)
	for _, m := range res.Common {
		if len(m.Files) > 0 {
			log.Infof("Found %d %s files", len(m.Files), m.Name)
		}
	}
	return nil
}

func entryNames(files []*zip.File) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}

// filterEntries keeps archive order and never returns nil.
func filterEntries(names []string, match func(string) bool) []string {
	matched := []string{}
	for _, name := range names {
		if match(name) {
			matched = append(matched, name)
		}
	}
	return matched
}

func keyFilePresence(names []string) map[string]bool {
	present := strset.New(names...)
	found := make(map[string]bool, len(keyFiles))
	for _, name := range keyFiles {
		found[name] = present.Has(name)
	}
	return found
}

func commonFilePresence(names []string) []CommonMatch {
	matches := make([]CommonMatch, 0, len(commonFiles))
	for _, common := range commonFiles {
		matches = append(matches, CommonMatch{
			Name: common,
			Files: filterEntries(names, func(name string) bool {
				return strings.Contains(name, common)
			}),
		})
	}
	return matches
}
