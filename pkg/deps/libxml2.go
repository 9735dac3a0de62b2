package deps

import (
	"context"
	"path/filepath"

	"github.com/codelldb/lldb-dist/pkg/cmake"
	"github.com/codelldb/lldb-dist/pkg/target"
	"github.com/codelldb/lldb-dist/pkg/utils"
	log "github.com/sirupsen/logrus"
)

type LibXML2 struct {
	IncludeDir string
	Library    string
}

// only the SAX1 parser is needed
var libxml2Options = map[string]string{
	"BUILD_SHARED_LIBS":         "OFF",
	"LIBXML2_WITH_SAX1":         "ON",
	"LIBXML2_WITH_THREADS":      "ON",
	"LIBXML2_WITH_TREE":         "OFF",
	"LIBXML2_WITH_OUTPUT":       "OFF",
	"LIBXML2_WITH_XPATH":        "OFF",
	"LIBXML2_WITH_FEXCEPTIONS":  "OFF",
	"LIBXML2_WITH_FTP":          "OFF",
	"LIBXML2_WITH_HISTORY":      "OFF",
	"LIBXML2_WITH_HTML":         "OFF",
	"LIBXML2_WITH_HTTP":         "OFF",
	"LIBXML2_WITH_ICONV":        "OFF",
	"LIBXML2_WITH_ICU":          "OFF",
	"LIBXML2_WITH_ISO8859X":     "OFF",
	"LIBXML2_WITH_LEGACY":       "OFF",
	"LIBXML2_WITH_LZMA":         "OFF",
	"LIBXML2_WITH_MEM_DEBUG":    "OFF",
	"LIBXML2_WITH_MINIMUM":      "OFF",
	"LIBXML2_WITH_MODULES":      "OFF",
	"LIBXML2_WITH_PATTERN":      "OFF",
	"LIBXML2_WITH_PUSH":         "OFF",
	"LIBXML2_WITH_READER":       "OFF",
	"LIBXML2_WITH_REGEXPS":      "OFF",
	"LIBXML2_WITH_RUN_DEBUG":    "OFF",
	"LIBXML2_WITH_SCHEMAS":      "OFF",
	"LIBXML2_WITH_SCHEMATRON":   "OFF",
	"LIBXML2_WITH_THREAD_ALLOC": "OFF",
	"LIBXML2_WITH_VALID":        "OFF",
	"LIBXML2_WITH_WRITER":       "OFF",
	"LIBXML2_WITH_XINCLUDE":     "OFF",
	"LIBXML2_WITH_XPTR":         "OFF",
	"LIBXML2_WITH_ZLIB":         "OFF",
}

// LibXML2Vars returns the CMake variables used to configure libxml2.
func LibXML2Vars(installDir string, cfg target.Config) cmake.Vars {
	vars := cmake.Vars{}
	vars.Update(libxml2Options)
	vars["CMAKE_INSTALL_PREFIX"] = installDir
	vars.Update(cfg)
	if cfg.SystemName() != target.Windows {
		vars.Append(target.CFlags, " -Wno-implicit-function-declaration")
	}
	return vars
}

// BuildLibXML2 clones, builds and installs a static libxml2 for cfg. The
// build is skipped if the library is already installed.
func (b *Builder) BuildLibXML2(ctx context.Context, cfg target.Config) (*LibXML2, error) {
	src := filepath.Join(b.WorkDir, "libxml2")
	err := b.clone(ctx, src, b.LibXML2Repo)
	if err != nil {
		return nil, err
	}

	installDir := filepath.Join(src, "install")
	libName := "libxml2.a"
	if cfg.SystemName() == target.Windows {
		libName = "xml2.lib"
	}
	ret := &LibXML2{
		IncludeDir: filepath.Join(installDir, "include", "libxml2"),
		Library:    filepath.Join(installDir, "lib", libName),
	}

	if utils.Exists(ret.Library) {
		log.Infof("%s is up to date", ret.Library)
		return ret, nil
	}

	p := &cmake.Project{
		Name:      "XML2",
		SourceDir: src,
		BuildDir:  filepath.Join(src, "build"),
	}
	err = p.Configure(ctx, b.Runner, LibXML2Vars(installDir, cfg))
	if err != nil {
		return nil, err
	}
	err = p.Build(ctx, b.Runner, "")
	if err != nil {
		return nil, err
	}
	err = p.Install(ctx, b.Runner)
	if err != nil {
		return nil, err
	}
	return ret, nil
}
