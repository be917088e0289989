package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gitlab.prplanit.com/precisionplanit/chartferry/src/chart"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/config"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/docker"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/forge"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/gitrepo"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/gitver"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/helmrepo"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/output"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/prompt"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/shell"
	"gitlab.prplanit.com/precisionplanit/chartferry/src/version"
)

var (
	pubRemoteURL   string
	pubBranch      string
	pubRegistry    string
	pubImageRepo   string
	pubImageTag    string
	pubChartDir    string
	pubDocsDir     string
	pubRepoURL     string
	pubStopCompose bool
	pubComposeDir  string
	pubDockerfile  string
	pubYes         bool
)

var publishCmd = &cobra.Command{
	Use:   "publish [dir]",
	Short: "Build, push, package, and commit a release",
	Long: `Run the full publish pipeline against the repository containing dir
(default: the current directory).

Steps: resolve repo root, ensure remote and branch, optionally stop the
local compose stack, login/build/push the image, create or update the
Helm chart, package it and regenerate the chart repo index, then commit
and push. Every step tolerates prior partial state, so reruns converge.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&pubRemoteURL, "remote-url", "", "git remote URL (default: existing origin)")
	publishCmd.Flags().StringVar(&pubBranch, "branch", "", "branch to publish from")
	publishCmd.Flags().StringVar(&pubRegistry, "registry", "", "container registry host")
	publishCmd.Flags().StringVar(&pubImageRepo, "image-repo", "", "image repository, e.g. ghcr.io/<owner>/<name>")
	publishCmd.Flags().StringVar(&pubImageTag, "image-tag", "", "image tag (default: UTC timestamp)")
	publishCmd.Flags().StringVar(&pubChartDir, "chart-dir", "", "chart path under the repo root (default: charts/<repo>)")
	publishCmd.Flags().StringVar(&pubDocsDir, "docs-dir", "", "distribution output directory")
	publishCmd.Flags().StringVar(&pubRepoURL, "repo-url", "", "chart repo base URL (default: GitHub Pages URL of the remote)")
	publishCmd.Flags().BoolVar(&pubStopCompose, "stop-compose", false, "stop the local compose stack before building")
	publishCmd.Flags().StringVar(&pubComposeDir, "compose-dir", "", "compose directory relative to the repo root")
	publishCmd.Flags().StringVar(&pubDockerfile, "dockerfile", "", "Dockerfile path (default: Dockerfile.local, then Dockerfile)")
	publishCmd.Flags().BoolVarP(&pubYes, "yes", "y", false, "accept all defaults, never prompt")

	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	// Required tools, before any other work.
	for _, tool := range []string{"git", "docker", "helm"} {
		if err := shell.LookPath(tool); err != nil {
			return err
		}
	}

	startDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting working directory: %w", err)
	}
	if len(args) > 0 {
		startDir = args[0]
	}

	ctx := context.Background()
	color := output.UseColor()
	w := os.Stdout
	runner := shell.NewRunner(verbose)
	pipelineStart := time.Now()

	pcfg := cfg.Publish
	applyPublishFlags(&pcfg)

	root, err := gitrepo.Locate(ctx, runner, startDir)
	if err != nil {
		return err
	}
	gw := gitrepo.NewGateway(runner, root)

	remoteURL := pcfg.RemoteURL
	if remoteURL == "" {
		remoteURL = gw.RemoteURL(ctx)
	}
	if remoteURL == "" {
		return fmt.Errorf("no git remote configured; pass --remote-url")
	}
	origin, err := forge.ParseRemote(remoteURL)
	if err != nil {
		return err
	}

	output.Banner(w, output.BannerInfo{Version: version.Version, Commit: version.Commit}, color)
	output.ContextBlock(w, []output.KV{
		{Key: "Repo root", Value: root},
		{Key: "Remote", Value: remoteURL},
		{Key: "Branch", Value: pcfg.Branch},
		{Key: "Registry", Value: pcfg.Registry},
	})

	// --- Git setup ---
	output.SectionStart(w, "cf_git", "Git")
	gitStart := time.Now()
	remoteAdded, err := gw.EnsureRemote(ctx, remoteURL)
	if err != nil {
		output.SectionEnd(w, "cf_git")
		return err
	}
	branchSwitched, err := gw.EnsureBranch(ctx, pcfg.Branch)
	if err != nil {
		output.SectionEnd(w, "cf_git")
		return err
	}
	gitSec := output.NewSection(w, "Git", time.Since(gitStart), color)
	gitSec.Row("%-16s%s", "remote", describeEnsure(remoteAdded, "added", "already configured"))
	gitSec.Row("%-16s%s (%s)", "branch", pcfg.Branch, describeEnsure(branchSwitched, "switched", "already current"))
	gitSec.Close()
	output.SectionEnd(w, "cf_git")

	// --- Compose stop (optional) ---
	composeSummary := "skipped"
	if pcfg.StopCompose {
		composeDir := filepath.Join(root, pcfg.ComposeDir)
		stopStart := time.Now()
		stopped, err := docker.NewClient(runner).ComposeDownIfPresent(ctx, composeDir)
		if err != nil {
			return err
		}
		sec := output.NewSection(w, "Compose", time.Since(stopStart), color)
		if stopped {
			sec.Row("stopped stack in %s", composeDir)
			composeSummary = "stack stopped"
		} else {
			sec.Row("no compose file in %s, nothing to stop", composeDir)
			composeSummary = "no compose file"
		}
		sec.Close()
	}

	// --- Credentials & coordinates ---
	p := prompt.New(os.Stdin, os.Stdout)
	creds, coords, err := gatherInputs(p, &pcfg, origin)
	if err != nil {
		return err
	}
	imageRef, err := docker.ValidateReference(coords.repo, coords.tag)
	if err != nil {
		return err
	}

	dc := docker.NewClient(runner)

	// --- Login ---
	output.SectionStart(w, "cf_login", "Login")
	loginStart := time.Now()
	if err := dc.Login(ctx, pcfg.Registry, creds.user, creds.token); err != nil {
		output.SectionEnd(w, "cf_login")
		return err
	}
	loginSec := output.NewSection(w, "Login", time.Since(loginStart), color)
	loginSec.Row("%-16s%s as %s", "registry", pcfg.Registry, creds.user)
	loginSec.Close()
	output.SectionEnd(w, "cf_login")

	// --- Build & push ---
	dockerfile := resolveDockerfile(root, pcfg.Dockerfile)
	output.SectionStart(w, "cf_build", "Build")
	buildStart := time.Now()
	if err := dc.BuildAndPush(ctx, imageRef, root, dockerfile); err != nil {
		output.SectionEnd(w, "cf_build")
		return err
	}
	buildSec := output.NewSection(w, "Build", time.Since(buildStart), color)
	if dockerfile != "" {
		buildSec.Row("%-16s%s", "dockerfile", dockerfile)
	} else {
		buildSec.Row("%-16s%s", "dockerfile", output.Dimmed("(context default)", color))
	}
	buildSec.Row("%-16s%s %s", "pushed", imageRef, output.StatusIcon("success", color))
	buildSec.Close()
	output.SectionEnd(w, "cf_build")

	// --- Chart ---
	chartDir := pcfg.ChartDir
	if chartDir == "" {
		chartDir = filepath.Join("charts", strings.ToLower(origin.Repo))
	}
	if !filepath.IsAbs(chartDir) {
		chartDir = filepath.Join(root, chartDir)
	}

	vi, _ := gitver.Detect(ctx, runner, root)
	appVersion := vi.AppVersion(coords.tag)

	chartStart := time.Now()
	created, err := chart.Ensure(chartDir, coords.repo, coords.tag, appVersion)
	if err != nil {
		return err
	}
	chartSec := output.NewSection(w, "Chart", time.Since(chartStart), color)
	chartSec.Row("%-16s%s", "path", chartDir)
	chartSec.Row("%-16s%s", "mode", describeEnsure(created, "created", "updated in place"))
	chartSec.Row("%-16s%s:%s", "image", coords.repo, coords.tag)
	chartSec.Row("%-16s%s", "appVersion", appVersion)
	chartSec.Close()

	// --- Package & index ---
	repoURL := pcfg.RepoURL
	if repoURL == "" {
		repoURL = origin.PagesURL()
	}
	if repoURL == "" {
		return fmt.Errorf("no chart repo URL derivable for host %s; pass --repo-url", origin.Host)
	}
	docsDir := pcfg.DocsDir
	if !filepath.IsAbs(docsDir) {
		docsDir = filepath.Join(root, docsDir)
	}

	output.SectionStart(w, "cf_package", "Package")
	pkgStart := time.Now()
	archive, err := helmrepo.NewPackager(runner).PackageAndIndex(ctx, chartDir, docsDir, repoURL)
	if err != nil {
		output.SectionEnd(w, "cf_package")
		return err
	}
	pkgSec := output.NewSection(w, "Package", time.Since(pkgStart), color)
	if archive != "" {
		pkgSec.Row("%-16s%s", "archive", archive)
	} else {
		pkgSec.Row("%-16s%s", "archive", output.Dimmed("(no matching archive found)", color))
	}
	pkgSec.Row("%-16s%s/index.yaml", "index", repoURL)
	pkgSec.Close()
	output.SectionEnd(w, "cf_package")

	// --- Commit & push ---
	msg := fmt.Sprintf("Publish Helm repo %s and image %s", archive, imageRef)
	output.SectionStart(w, "cf_commit", "Commit")
	commitStart := time.Now()
	committed, err := gw.CommitAndPush(ctx, msg)
	if err != nil {
		output.SectionEnd(w, "cf_commit")
		return err
	}
	commitSec := output.NewSection(w, "Commit", time.Since(commitStart), color)
	if committed {
		commitSec.Row("%-16s%s", "commit", msg)
	} else {
		commitSec.Row("%-16s%s", "commit", output.Dimmed("nothing to commit", color))
	}
	commitSec.Row("%-16s%s HEAD", "pushed", pcfg.Branch)
	commitSec.Close()
	output.SectionEnd(w, "cf_commit")

	// --- Summary ---
	sumSec := output.NewSection(w, "Summary", 0, color)
	output.SummaryRow(w, "git", "success", fmt.Sprintf("%s @ %s", origin.Owner+"/"+origin.Repo, pcfg.Branch), color)
	if pcfg.StopCompose {
		output.SummaryRow(w, "compose", "success", composeSummary, color)
	}
	output.SummaryRow(w, "image", "success", imageRef, color)
	chartDetail := "updated"
	if created {
		chartDetail = "created"
	}
	output.SummaryRow(w, "chart", "success", chartDetail, color)
	pkgDetail := archive
	if pkgDetail == "" {
		pkgDetail = "packaged"
	}
	output.SummaryRow(w, "package", "success", pkgDetail, color)
	commitDetail := "committed and pushed"
	if !committed {
		commitDetail = "no changes, pushed"
	}
	output.SummaryRow(w, "publish", "success", commitDetail, color)
	sumSec.Separator()
	output.SummaryTotal(w, time.Since(pipelineStart), "success", color)
	sumSec.Close()

	fmt.Fprintf(w, "\n    Helm repo URL (add to your catalog):\n")
	fmt.Fprintf(w, "    → %s\n", repoURL)
	fmt.Fprintf(w, "\n    Verify locally:\n")
	fmt.Fprintf(w, "    → helm repo add %s %s\n", strings.ToLower(origin.Repo), repoURL)
	fmt.Fprintf(w, "    → helm repo update && helm search repo %s\n", strings.ToLower(origin.Repo))
	fmt.Fprintf(w, "\n    Image pushed:\n")
	fmt.Fprintf(w, "    → %s\n\n", imageRef)

	return nil
}

// applyPublishFlags overlays non-empty CLI flags onto the config.
func applyPublishFlags(pcfg *config.PublishConfig) {
	if pubRemoteURL != "" {
		pcfg.RemoteURL = pubRemoteURL
	}
	if pubBranch != "" {
		pcfg.Branch = pubBranch
	}
	if pubRegistry != "" {
		pcfg.Registry = pubRegistry
	}
	if pubImageRepo != "" {
		pcfg.ImageRepo = pubImageRepo
	}
	if pubImageTag != "" {
		pcfg.ImageTag = pubImageTag
	}
	if pubChartDir != "" {
		pcfg.ChartDir = pubChartDir
	}
	if pubDocsDir != "" {
		pcfg.DocsDir = pubDocsDir
	}
	if pubRepoURL != "" {
		pcfg.RepoURL = pubRepoURL
	}
	if pubStopCompose {
		pcfg.StopCompose = true
	}
	if pubComposeDir != "" {
		pcfg.ComposeDir = pubComposeDir
	}
	if pubDockerfile != "" {
		pcfg.Dockerfile = pubDockerfile
	}
}

type credentials struct {
	user  string
	token string
}

type coordinates struct {
	repo string
	tag  string
}

// gatherInputs resolves registry credentials and image coordinates from
// config, environment, and — unless --yes — interactive prompts with
// displayed defaults.
func gatherInputs(p *prompt.Prompter, pcfg *config.PublishConfig, origin forge.Origin) (credentials, coordinates, error) {
	creds := credentials{user: pcfg.Username, token: pcfg.Token}
	coords := coordinates{repo: pcfg.ImageRepo, tag: pcfg.ImageTag}

	if creds.user == "" {
		creds.user = strings.ToLower(origin.Owner)
	}
	if coords.repo == "" {
		coords.repo = origin.ImageRepo(pcfg.Registry)
	}
	if coords.tag == "" {
		coords.tag = DefaultImageTag(time.Now())
	}

	if !pubYes {
		var err error
		if creds.user, err = p.String("Registry username", creds.user); err != nil {
			return creds, coords, err
		}
		if creds.token == "" {
			if creds.token, err = p.Secret("Registry token"); err != nil {
				return creds, coords, err
			}
		}
		if coords.repo, err = p.String("Image repository", coords.repo); err != nil {
			return creds, coords, err
		}
		if coords.tag, err = p.String("Image tag", coords.tag); err != nil {
			return creds, coords, err
		}
	}

	if creds.token == "" {
		return creds, coords, errMissingToken
	}
	return creds, coords, nil
}

// DefaultImageTag derives the timestamp tag that keeps successive runs
// unique absent an explicit override.
func DefaultImageTag(now time.Time) string {
	return now.UTC().Format("20060102-150405")
}

// resolveDockerfile picks the build file: explicit path first, then the
// local-override convention, then the standard name, else none.
func resolveDockerfile(root, explicit string) string {
	if explicit != "" {
		if filepath.IsAbs(explicit) {
			return explicit
		}
		return filepath.Join(root, explicit)
	}
	for _, candidate := range []string{"Dockerfile.local", "Dockerfile"} {
		path := filepath.Join(root, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}


func describeEnsure(changed bool, did, kept string) string {
	if changed {
		return did
	}
	return kept
}
