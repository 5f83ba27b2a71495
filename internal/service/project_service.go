package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/iniulez/spbsfi/internal/entity"
	"github.com/iniulez/spbsfi/internal/repository"
)

// ProjectService manages the project master. PMs own their projects, the
// admin can manage all of them.
type ProjectService struct {
	projectRepo *repository.ProjectRepository
	activity    *repository.ActivityLogRepository
}

func NewProjectService(projectRepo *repository.ProjectRepository, activity *repository.ActivityLogRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, activity: activity}
}

func (s *ProjectService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Project, int64, error) {
	return s.projectRepo.FindAll(ctx, page, pageSize, filters)
}

func (s *ProjectService) Get(ctx context.Context, id string) (*entity.Project, error) {
	return s.projectRepo.FindByID(ctx, id)
}

type CreateProjectRequest struct {
	ProjectName   string `json:"project_name" binding:"required"`
	PMID          string `json:"pm_id"`
	ProjectPOFile string `json:"project_po_file"`
}

func (s *ProjectService) Create(ctx context.Context, actor Actor, req *CreateProjectRequest) (*entity.Project, error) {
	if err := ensureRole(actor, actionProjectManage); err != nil {
		return nil, err
	}

	pmID := req.PMID
	if actor.Role == entity.RoleProjectManager {
		// PMs can only create their own projects
		pmID = actor.ID
	}
	if pmID == "" {
		return nil, newValidationError("pm_id", "owning PM is required")
	}

	project := &entity.Project{
		ID:            uuid.New().String()[:32],
		ProjectName:   req.ProjectName,
		PMID:          pmID,
		ProjectPOFile: req.ProjectPOFile,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Created project %s", project.ProjectName), project.ID)
	return project, nil
}

type UpdateProjectRequest struct {
	ProjectName   *string `json:"project_name"`
	ProjectPOFile *string `json:"project_po_file"`
}

func (s *ProjectService) Update(ctx context.Context, actor Actor, id string, req *UpdateProjectRequest) (*entity.Project, error) {
	if err := ensureRole(actor, actionProjectManage); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actor.Role == entity.RoleProjectManager && project.PMID != actor.ID {
		return nil, &ForbiddenError{Role: actor.Role, Action: "edit another PM's project"}
	}

	if req.ProjectName != nil {
		project.ProjectName = *req.ProjectName
	}
	if req.ProjectPOFile != nil {
		project.ProjectPOFile = *req.ProjectPOFile
	}
	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	s.activity.LogActivity(ctx, actor.ID, actor.Name, actor.Role,
		fmt.Sprintf("Updated project %s", project.ProjectName), project.ID)
	return project, nil
}
