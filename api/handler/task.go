package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/tasktracker/api/transport"
	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/pkg/httpcontext"
	taskUC "github.com/fastygo/tasktracker/usecase/task"
)

type TaskHandler struct {
	baseHandler
	uc *taskUC.UseCase
}

func NewTaskHandler(uc *taskUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary List the caller's tasks
// @Tags tasks
// @Router /api/v1/tasks [get]
func (h *TaskHandler) GetTasks(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.List(stdCtx, user)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondTasks(ctx, tasks)
}

// @Summary Filter the caller's tasks
// @Tags tasks
// @Param keyword query string false "substring of title or description, any case"
// @Param category query string false "WORK, PERSONAL, STUDY, HEALTH or OTHER"
// @Param priority query string false "LOW, MEDIUM or HIGH"
// @Param status query string false "CREATED, IN_PROGRESS or DONE"
// @Param overdue query bool false "only overdue tasks"
// @Router /api/v1/tasks/filter [get]
func (h *TaskHandler) FilterTasks(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	criteria, err := parseCriteria(ctx.QueryArgs())
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Filter(stdCtx, user, criteria)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondTasks(ctx, tasks)
}

// @Summary Sort the caller's tasks
// @Tags tasks
// @Param ids query string false "comma separated task ids; all tasks when absent"
// @Param sortBy query string false "priority (default), dueDate or status"
// @Param ascending query bool false "defaults to true"
// @Router /api/v1/tasks/sort [get]
func (h *TaskHandler) SortTasks(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	args := ctx.QueryArgs()
	ascending := true
	if raw := string(args.Peek("ascending")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			h.respondInvalid(ctx, "ascending must be a boolean")
			return
		}
		ascending = parsed
	}
	key := taskUC.ParseSortKey(string(args.Peek("sortBy")))

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	tasks, err := h.uc.Sort(stdCtx, user, parseIDs(args), key, ascending)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondTasks(ctx, tasks)
}

// @Summary Create task
// @Tags tasks
// @Router /api/v1/tasks [post]
func (h *TaskHandler) CreateTask(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}

	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, user, in)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, transport.NewTaskResponse(*created, h.uc.Now()))
}

// @Summary Replace the editable fields of a task
// @Tags tasks
// @Router /api/v1/tasks/{id} [put]
func (h *TaskHandler) UpdateTask(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	in, ok := h.parseTask(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	updated, err := h.uc.Update(stdCtx, user, id, in)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskResponse(*updated, h.uc.Now()))
}

// @Summary Set task status
// @Tags tasks
// @Router /api/v1/tasks/{id}/status [put]
func (h *TaskHandler) SetStatus(ctx *fasthttp.RequestCtx) {
	var req transport.StatusRequest
	if !h.decode(ctx, &req) {
		return
	}
	status, err := domain.ParseStatus(req.Status)
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return
	}
	h.transition(ctx, status)
}

// @Summary Mark task in progress
// @Tags tasks
// @Router /api/v1/tasks/{id}/in_progress [post]
func (h *TaskHandler) StartTask(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, domain.StatusInProgress)
}

// @Summary Mark task done
// @Tags tasks
// @Router /api/v1/tasks/{id}/done [post]
func (h *TaskHandler) CompleteTask(ctx *fasthttp.RequestCtx) {
	h.transition(ctx, domain.StatusDone)
}

// @Summary Delete task
// @Tags tasks
// @Router /api/v1/tasks/{id} [delete]
func (h *TaskHandler) DeleteTask(ctx *fasthttp.RequestCtx) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, user, id); err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	ctx.SetStatusCode(http.StatusNoContent)
}

func (h *TaskHandler) transition(ctx *fasthttp.RequestCtx, status domain.Status) {
	user, ok := h.currentUser(ctx)
	if !ok {
		return
	}
	id, ok := h.taskID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	task, err := h.uc.TransitionTo(stdCtx, user, id, status)
	if err != nil {
		h.respondError(ctx, stdCtx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, transport.NewTaskResponse(*task, h.uc.Now()))
}

func (h *TaskHandler) respondTasks(ctx *fasthttp.RequestCtx, tasks []domain.Task) {
	body := transport.NewTaskList(tasks, h.uc.Now())
	h.respondJSON(ctx, http.StatusOK, transport.NewSuccess(body, transport.ListMeta{Count: len(body)}))
}

func (h *TaskHandler) parseTask(ctx *fasthttp.RequestCtx) (domain.TaskInput, bool) {
	var req transport.TaskRequest
	if !h.decode(ctx, &req) {
		return domain.TaskInput{}, false
	}
	in, err := req.Input()
	if err != nil {
		h.respondInvalid(ctx, err.Error())
		return domain.TaskInput{}, false
	}
	return in, true
}

func (h *TaskHandler) taskID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing task id")
		return "", false
	}
	return id, true
}

func parseCriteria(args *fasthttp.Args) (taskUC.Criteria, error) {
	c := taskUC.Criteria{Keyword: string(args.Peek("keyword"))}

	if raw := string(args.Peek("category")); raw != "" {
		category, err := domain.ParseCategory(raw)
		if err != nil {
			return c, err
		}
		c.Category = category
	}
	if raw := string(args.Peek("priority")); raw != "" {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return c, err
		}
		c.Priority = priority
	}
	if raw := string(args.Peek("status")); raw != "" {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return c, err
		}
		c.Status = status
	}
	if raw := string(args.Peek("overdue")); raw != "" {
		overdue, err := strconv.ParseBool(raw)
		if err != nil {
			return c, domain.Invalidf("overdue must be a boolean")
		}
		c.OverdueOnly = overdue
	}
	return c, nil
}

// parseIDs accepts ids=a,b as well as repeated ids parameters.
func parseIDs(args *fasthttp.Args) []string {
	var ids []string
	for _, raw := range args.PeekMulti("ids") {
		for _, id := range strings.Split(string(raw), ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}
