package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/insidewhy/bagsakan/internal/buildcache"
	"github.com/insidewhy/bagsakan/internal/config"
	"github.com/insidewhy/bagsakan/internal/diagnostic"
	"github.com/insidewhy/bagsakan/internal/discovery"
	"github.com/insidewhy/bagsakan/internal/emit"
	"github.com/insidewhy/bagsakan/internal/predicate"
	"github.com/insidewhy/bagsakan/internal/sourceset"
	"github.com/insidewhy/bagsakan/internal/symtab"
	"github.com/insidewhy/bagsakan/internal/tsast"
	"github.com/insidewhy/bagsakan/internal/typegraph"
)

// runBuild executes the full pipeline: scan -> parse -> index -> discover
// -> resolve -> synthesize -> emit.
func runBuild(args []string) int {
	buildFlags := flag.NewFlagSet("bagsakan", flag.ExitOnError)

	var configPath string
	buildFlags.StringVar(&configPath, "config", "bagsakan.toml", "Path to bagsakan config file")
	buildFlags.Usage = func() {
		fmt.Println("Usage: bagsakan [flags]")
		fmt.Println()
		fmt.Println("Flags:")
		buildFlags.PrintDefaults()
	}
	if err := buildFlags.Parse(args); err != nil {
		return 1
	}

	start := time.Now()

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: could not get working directory: %v\n", err)
		return 1
	}

	resolvedConfigPath := configPath
	if !filepath.IsAbs(resolvedConfigPath) {
		resolvedConfigPath = filepath.Join(cwd, resolvedConfigPath)
	}

	cfg, err := config.Load(resolvedConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	validatorFilePath := cfg.ValidatorFile
	if !filepath.IsAbs(validatorFilePath) {
		validatorFilePath = filepath.Join(cwd, validatorFilePath)
	}

	diags := diagnostic.NewCollector(false, false)

	scanStart := time.Now()
	sources, err := sourceset.Build(cwd, cfg.SourceFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	scanDur := time.Since(scanStart)
	fmt.Fprintf(os.Stderr, "scanned %d source file(s) in %s\n", len(sources), scanDur)

	configHash := ""
	if _, statErr := os.Stat(resolvedConfigPath); statErr == nil {
		configHash = buildcache.HashFile(resolvedConfigPath)
	}
	hashes := make([]string, len(sources))
	for i, f := range sources {
		hashes[i] = buildcache.HashFile(f.Path)
	}
	sourcesHash := buildcache.HashAll(hashes)
	cachePath := buildcache.CachePath(validatorFilePath)

	if cache, staleReason := buildcache.Evaluate(cachePath, configHash, sourcesHash); cache != nil {
		fmt.Fprintf(os.Stderr, "up to date, nothing to do (%s)\n", time.Since(start))
		return 0
	} else {
		fmt.Fprintf(os.Stderr, "cache miss: %s\n", staleReason)
	}

	parseStart := time.Now()
	parsedFiles := make(map[string]*tsast.File, len(sources))
	for _, src := range sources {
		f, err := tsast.Parse(src.Path, src.Content)
		if err != nil {
			if pe, ok := err.(*tsast.ParseError); ok {
				diags.Error(diagnostic.CategoryParseError, pe.File, pe.Pos.Line, pe.Msg)
			} else {
				diags.Error(diagnostic.CategoryParseError, src.Path, 0, err.Error())
			}
			continue
		}
		parsedFiles[src.Path] = f
	}
	fmt.Fprintf(os.Stderr, "parsed %d file(s) in %s\n", len(parsedFiles), time.Since(parseStart))

	if diags.HasFatal() {
		printDiagnostics(diags)
		fmt.Fprintln(os.Stderr, "aborting: one or more source files failed to parse")
		return 1
	}

	resolveStart := time.Now()
	resolver := &symtab.FileResolver{
		FollowExternalImports: cfg.FollowExternalImports,
		ExcludePackages:       cfg.ExcludePackages,
		Conditions:            cfg.Conditions,
	}
	table := symtab.NewTable(resolver)
	for path, f := range parsedFiles {
		table.AddSourceFile(path, f)
	}

	matcher, err := discovery.Compile(cfg.ValidatorPattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	type occurrence struct {
		typeName string
		file     string
	}
	occurrencesByValidator := map[string][]occurrence{}
	for path, f := range parsedFiles {
		for _, req := range matcher.Discover(f) {
			occurrencesByValidator[req.ValidatorName] = append(occurrencesByValidator[req.ValidatorName], occurrence{typeName: req.TypeName, file: path})
		}
	}

	typeResolver := typegraph.NewResolver(table, diags)
	synth := predicate.NewSynthesizer(typeResolver.Graph())

	validatorNames := make([]string, 0, len(occurrencesByValidator))
	for name := range occurrencesByValidator {
		validatorNames = append(validatorNames, name)
	}
	sort.Strings(validatorNames)

	validatorsWritten := 0
	for _, validatorName := range validatorNames {
		occs := occurrencesByValidator[validatorName]
		var resolved []typegraph.DeclID
		for _, occ := range occs {
			id, ok := typeResolver.Resolve(occ.file, occ.typeName)
			if !ok {
				continue
			}
			if typeResolver.Graph().HasUnsupported(id) {
				diags.Error(diagnostic.CategoryUnsupportedType, occ.file, 0,
					fmt.Sprintf("%q: %q contains a type construct that cannot be validated", validatorName, occ.typeName))
				continue
			}
			resolved = append(resolved, id)
		}
		if len(resolved) == 0 {
			continue
		}
		if conflicting(resolved) {
			diags.Error(diagnostic.CategoryConflict, occs[0].file, 0,
				fmt.Sprintf("%q resolves to different declarations depending on call site", validatorName))
			continue
		}
		synth.ScheduleRoot(resolved[0], validatorName)
		validatorsWritten++
	}

	fns := synth.Functions()
	content := emit.Render(fns, emit.Options{ValidatorFile: validatorFilePath, UseJsExtensions: cfg.UseJsExtensions})
	resolveDur := time.Since(resolveStart)
	fmt.Fprintf(os.Stderr, "resolved %d validator(s) in %s\n", validatorsWritten, resolveDur)

	if diags.HasFatal() {
		printDiagnostics(diags)
		fmt.Fprintln(os.Stderr, "aborting: one or more validator names could not be resolved unambiguously")
		return 1
	}

	writeStart := time.Now()
	wrote, err := emit.Write(validatorFilePath, content)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if wrote {
		fmt.Fprintf(os.Stderr, "wrote %s in %s\n", validatorFilePath, time.Since(writeStart))
	} else {
		fmt.Fprintf(os.Stderr, "%s already up to date\n", validatorFilePath)
	}

	if err := buildcache.Save(cachePath, buildcache.New(configHash, sourcesHash, []string{validatorFilePath})); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not save build cache: %v\n", err)
	}

	printDiagnostics(diags)
	fmt.Fprintf(os.Stderr, "done in %s (%s)\n", time.Since(start), diags.Summary())
	return 0
}

func conflicting(ids []typegraph.DeclID) bool {
	if len(ids) == 0 {
		return false
	}
	first := ids[0]
	for _, id := range ids[1:] {
		if id != first {
			return true
		}
	}
	return false
}

func printDiagnostics(diags *diagnostic.Collector) {
	if out := diags.FormatAll(); out != "" {
		fmt.Fprint(os.Stderr, out)
	}
}
