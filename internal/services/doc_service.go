package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docfoundry/internal/docgen"
	"docfoundry/internal/events"
	"docfoundry/internal/github"
	"docfoundry/internal/gitsource"
	"docfoundry/internal/models"
	"docfoundry/internal/refine"
	"docfoundry/internal/repositories"
	"docfoundry/internal/stream"
)

// DocService ties the generation pipeline together: blocking generation,
// streaming generation, refinement, and accept-and-publish.
type DocService struct {
	context      context.Context
	generator    *docgen.Generator
	assembler    *docgen.Assembler
	engine       *refine.Engine
	orchestrator *stream.Orchestrator
	repo         repositories.ArtifactRepository
	host         *github.Client
	loader       *gitsource.Loader
	logger       *zap.Logger
}

func NewDocService(
	generator *docgen.Generator,
	assembler *docgen.Assembler,
	engine *refine.Engine,
	orchestrator *stream.Orchestrator,
	repo repositories.ArtifactRepository,
	host *github.Client,
	logger *zap.Logger,
) *DocService {
	return &DocService{
		generator:    generator,
		assembler:    assembler,
		engine:       engine,
		orchestrator: orchestrator,
		repo:         repo,
		host:         host,
		loader:       gitsource.NewLoader(),
		logger:       logger,
	}
}

func (s *DocService) Startup(ctx context.Context) error {
	s.context = ctx
	if s.generator == nil {
		return fmt.Errorf("generator not configured")
	}
	if s.assembler == nil {
		return fmt.Errorf("assembler not configured")
	}
	if s.engine == nil {
		return fmt.Errorf("refinement engine not configured")
	}
	if s.orchestrator == nil {
		return fmt.Errorf("stream orchestrator not configured")
	}
	if s.repo == nil {
		return fmt.Errorf("artifact repository not configured")
	}
	return nil
}

// Generate documents every submitted file and stores the unified document
// as a new artifact at version 1.
func (s *DocService) Generate(ctx context.Context, files []models.FileRecord) (*models.GenerationResult, error) {
	if len(files) == 0 {
		return nil, validationErrorf("no files provided")
	}
	docs, err := s.generator.GenerateFileDocs(ctx, files)
	if err != nil {
		return nil, err
	}
	unified := s.assembler.Assemble(docs)
	artifactID, err := s.repo.Create(unified)
	if err != nil {
		return nil, err
	}
	s.logger.Info("generated documentation",
		zap.String("artifactId", artifactID),
		zap.Int("files", len(files)),
		zap.Int("documentedFiles", len(docs)))
	return &models.GenerationResult{ArtifactID: artifactID, Documentation: unified}, nil
}

// GenerateFromLocal loads a local checkout and documents it. With a branch
// name the path must be a git repository; without one any directory works.
func (s *DocService) GenerateFromLocal(ctx context.Context, path, branch string) (*models.GenerationResult, error) {
	if path == "" {
		return nil, validationErrorf("path is required")
	}
	var files []models.FileRecord
	var err error
	if branch != "" {
		files, err = s.loader.LoadBranch(path, branch)
	} else if s.loader.ValidateRepository(path) == nil {
		files, err = s.loader.LoadBranch(path, "")
	} else {
		files, err = s.loader.LoadDirectory(path)
	}
	if err != nil {
		return nil, validationErrorf(err.Error())
	}
	return s.Generate(ctx, files)
}

// ListLocalBranches returns the branches of a local repository.
func (s *DocService) ListLocalBranches(path string) ([]models.BranchInfo, error) {
	if path == "" {
		return nil, validationErrorf("path is required")
	}
	branches, err := s.loader.ListBranches(path)
	if err != nil {
		return nil, validationErrorf(err.Error())
	}
	return branches, nil
}

// StreamGenerate runs the generation pipeline and returns its event channel.
func (s *DocService) StreamGenerate(ctx context.Context, files []models.FileRecord) (<-chan events.Event, error) {
	if len(files) == 0 {
		return nil, validationErrorf("no files provided")
	}
	return s.orchestrator.Run(ctx, files), nil
}

// Refine applies one round of user feedback to an artifact.
func (s *DocService) Refine(ctx context.Context, artifactID, feedback string) (*models.RefinementResult, error) {
	if artifactID == "" {
		return nil, validationErrorf("documentation id is required")
	}
	if feedback == "" {
		return nil, validationErrorf("feedback is required")
	}
	return s.engine.Refine(ctx, artifactID, feedback)
}

// Accept publishes the artifact's current version to the source host and
// collapses the version chain to the accepted content.
func (s *DocService) Accept(ctx context.Context, artifactID string, coords models.RepoCoordinates) (*models.PublishResult, error) {
	if artifactID == "" {
		return nil, validationErrorf("documentation id is required")
	}
	if coords.Owner == "" || coords.Repo == "" || coords.Branch == "" || coords.FilePath == "" {
		return nil, validationErrorf("owner, repo, branch and filePath are required")
	}
	if s.host == nil {
		return nil, validationErrorf("source host client not configured")
	}

	current, err := s.repo.GetCurrent(artifactID)
	if err != nil {
		return nil, err
	}
	result, err := s.host.WriteFile(ctx, coords, current.Content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.ResetToSingle(artifactID, current.Content); err != nil {
		return nil, err
	}
	s.logger.Info("accepted documentation",
		zap.String("artifactId", artifactID),
		zap.String("repo", coords.Owner+"/"+coords.Repo),
		zap.String("path", coords.FilePath))
	return result, nil
}
