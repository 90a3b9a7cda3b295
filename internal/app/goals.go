package app

import (
	"context"
	"fmt"

	"savings/internal/core"
	"savings/internal/log"
)

// SaveGoal creates a goal (create flow) or replaces one (edit flow). Edits
// keep the original creation time and background.
func (c *Controller) SaveGoal(ctx context.Context, in core.GoalInput) (Toast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	act, err := c.actionFor(ActionCreate, ActionEdit)
	if err != nil {
		return Toast{}, err
	}

	id := c.state.NextID
	if act.Type == ActionEdit {
		id = act.ID
	}

	goal, err := core.NewGoal(id, in, c.opts.Catalog, c.now())
	if err != nil {
		return Toast{}, err
	}

	op := log.OpCreate
	if act.Type == ActionEdit {
		i := c.state.indexOf(id)
		if i < 0 {
			return Toast{}, fmt.Errorf("edit goal %d: %w", id, ErrGoalNotFound)
		}
		prev := c.state.Goals[i]
		goal.CreatedAt = prev.CreatedAt
		goal.Background = prev.Background
		c.state.Goals[i] = goal
		op = log.OpUpdate
	} else {
		c.state.Goals = append(c.state.Goals, goal)
		c.state.NextID++
	}

	c.events.LogGoalEvent(ctx, "Goal saved", op,
		log.NewFields().WithGoal(goal.ID, goal.Name, goal.Category).WithAmount(core.FormatAmount(goal.TargetAmount)))

	return c.commit(ctx, Toast{Message: "Goal saved successfully!"}), nil
}

// DeleteGoal removes the goal targeted by the delete flow and keeps it in
// the undo buffer for the configured window.
func (c *Controller) DeleteGoal(ctx context.Context) (Toast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	act, err := c.actionFor(ActionDelete)
	if err != nil {
		return Toast{}, err
	}

	i := c.state.indexOf(act.ID)
	if i < 0 {
		return Toast{}, fmt.Errorf("delete goal %d: %w", act.ID, ErrGoalNotFound)
	}

	goal := c.state.Goals[i]
	c.state.Goals = append(c.state.Goals[:i:i], c.state.Goals[i+1:]...)
	if c.state.UI.OpenMenuID == goal.ID {
		c.state.UI.OpenMenuID = 0
	}
	c.deleted.push(goal, c.now())
	c.opts.AfterFunc(c.opts.UndoWindow, c.pruneDeleted)

	c.events.LogGoalEvent(ctx, "Goal deleted", log.OpDelete,
		log.NewFields().WithGoal(goal.ID, goal.Name, goal.Category))

	return c.commit(ctx, Toast{Message: "Goal deleted", Undo: true}), nil
}

func (c *Controller) pruneDeleted() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n := c.deleted.prune(c.now()); n > 0 {
		c.logger.Debug("Undo window closed", "pruned", n)
	}
}

// Undo restores the most recently deleted goal, appending it to the end of
// the list, if it was deleted within the undo window.
func (c *Controller) Undo(ctx context.Context) (Toast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	goal, ok := c.deleted.pop(c.now())
	if !ok {
		return Toast{}, ErrNothingToUndo
	}
	c.state.Goals = append(c.state.Goals, goal)

	c.events.LogGoalEvent(ctx, "Goal restored", log.OpUndo,
		log.NewFields().WithGoal(goal.ID, goal.Name, goal.Category))

	return c.commit(ctx, Toast{Message: "Goal restored"}), nil
}

// Deposit adds a positive amount to the targeted goal, capped at its target.
func (c *Controller) Deposit(ctx context.Context, raw string) (Toast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	act, err := c.actionFor(ActionAddMoney)
	if err != nil {
		return Toast{}, err
	}

	amount, err := core.ParseAmount(raw)
	if err != nil || !amount.IsPositive() {
		return Toast{}, core.Invalid("Please enter a valid amount", core.ErrInvalidAmount)
	}

	i := c.state.indexOf(act.ID)
	if i < 0 {
		return Toast{}, fmt.Errorf("deposit to goal %d: %w", act.ID, ErrGoalNotFound)
	}
	goal := &c.state.Goals[i]
	if err := goal.Deposit(amount); err != nil {
		return Toast{}, err
	}

	shown := core.FormatCurrency(amount.InexactFloat64(), c.opts.Render.Currency)
	c.events.LogGoalEvent(ctx, "Money added", log.OpDeposit,
		log.NewFields().WithGoal(goal.ID, goal.Name, "").WithAmount(amount.StringFixed(2)))

	return c.commit(ctx, Toast{Message: fmt.Sprintf("Added %s to %s", shown, goal.Name)}), nil
}

// SaveBackground applies the scratch selection: the colour if one is
// chosen, else the image, else no background at all.
func (c *Controller) SaveBackground(ctx context.Context) (Toast, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	act, err := c.actionFor(ActionCustomizeBackground)
	if err != nil {
		return Toast{}, err
	}

	i := c.state.indexOf(act.ID)
	if i < 0 {
		c.events.LogError(ctx, "Background target missing", ErrGoalNotFound, log.ComponentGoals, log.OpBackground,
			log.NewFields().WithGoal(act.ID, "", ""))
		return Toast{}, fmt.Errorf("background for goal %d: %w", act.ID, ErrGoalNotFound)
	}

	sc := c.state.UI.Scratch
	bg := ""
	switch {
	case sc.SelectedColor != "":
		bg = sc.SelectedColor
	case sc.SelectedImage != "":
		bg = sc.SelectedImage
	}
	c.state.Goals[i].Background = bg

	c.events.LogGoalEvent(ctx, "Background updated", log.OpBackground,
		log.NewFields().WithGoal(act.ID, c.state.Goals[i].Name, ""))

	return c.commit(ctx, Toast{Message: "Background updated!"}), nil
}

// SetFilter selects the category shown, or core.FilterAll.
func (c *Controller) SetFilter(ctx context.Context, category string) error {
	if category != core.FilterAll && !c.opts.Catalog.HasCategory(category) {
		return core.Invalid("Unknown category", fmt.Errorf("%w: %q", core.ErrUnknownCat, category))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.FilterCategory = category
	c.persist(ctx)
	c.rerender()
	return nil
}

// SetSort changes the card ordering.
func (c *Controller) SetSort(ctx context.Context, key string) error {
	k := core.SortKey(key)
	if !k.IsValid() {
		return core.Invalid("Unknown sort order", fmt.Errorf("sort key %q", key))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.SortBy = k
	c.persist(ctx)
	c.rerender()
	return nil
}

// ToggleTheme flips light/dark and returns the new theme.
func (c *Controller) ToggleTheme(ctx context.Context) core.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Theme = c.state.Theme.Toggle()
	c.persist(ctx)
	c.rerender()
	return c.state.Theme
}
