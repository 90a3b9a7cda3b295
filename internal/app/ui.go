package app

import (
	"fmt"

	"savings/internal/core"
)

// OpenCreate starts the create flow with an empty form.
func (c *Controller) OpenCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.openModal(Action{Type: ActionCreate})
}

// OpenEdit starts the edit flow for id.
func (c *Controller) OpenEdit(id int) error { return c.openFor(ActionEdit, id) }

// OpenDelete asks for confirmation before deleting id.
func (c *Controller) OpenDelete(id int) error { return c.openFor(ActionDelete, id) }

// OpenDeposit starts the add-money flow for id.
func (c *Controller) OpenDeposit(id int) error { return c.openFor(ActionAddMoney, id) }

// OpenBackground starts the customizer for id, seeding the scratch state
// from the goal's current background.
func (c *Controller) OpenBackground(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := c.state.indexOf(id)
	if i < 0 {
		return fmt.Errorf("customize goal %d: %w", id, ErrGoalNotFound)
	}
	c.openModal(Action{Type: ActionCustomizeBackground, ID: id})

	bg := c.state.Goals[i].Background
	switch {
	case core.IsHexColor(bg):
		c.state.UI.Scratch = Scratch{SelectedColor: bg, Tab: TabColor}
	case core.IsImageData(bg):
		c.state.UI.Scratch = Scratch{SelectedImage: bg, Tab: TabImage}
	}
	return nil
}

func (c *Controller) openFor(t ActionType, id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.indexOf(id) < 0 {
		return fmt.Errorf("open %s for goal %d: %w", t, id, ErrGoalNotFound)
	}
	c.openModal(Action{Type: t, ID: id})
	return nil
}

// openModal replaces any open modal and closes the card menu. Caller holds mu.
func (c *Controller) openModal(a Action) {
	c.closeModals()
	c.state.UI.Action = &a
	if c.state.UI.OpenMenuID != 0 {
		c.state.UI.OpenMenuID = 0
		c.rerender()
	}
}

// CloseAll dismisses whichever modal is open.
func (c *Controller) CloseAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeModals()
}

// ToggleMenu opens the card menu for id, or closes it if already open.
func (c *Controller) ToggleMenu(id int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.indexOf(id) < 0 {
		return fmt.Errorf("menu for goal %d: %w", id, ErrGoalNotFound)
	}
	if c.state.UI.OpenMenuID == id {
		c.state.UI.OpenMenuID = 0
	} else {
		c.state.UI.OpenMenuID = id
	}
	c.rerender()
	return nil
}

// CloseMenu closes any open card menu.
func (c *Controller) CloseMenu() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.UI.OpenMenuID != 0 {
		c.state.UI.OpenMenuID = 0
		c.rerender()
	}
}

// SelectColor picks a colour background, dropping any selected image.
func (c *Controller) SelectColor(hex string) error {
	if !core.IsHexColor(hex) {
		return core.Invalid("Please choose a valid colour", fmt.Errorf("colour %q", hex))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.actionFor(ActionCustomizeBackground); err != nil {
		return err
	}
	c.state.UI.Scratch.SelectedColor = hex
	c.state.UI.Scratch.SelectedImage = ""
	c.state.UI.Scratch.Tab = TabColor
	return nil
}

// SwitchTab changes the customizer pane without touching the selection.
func (c *Controller) SwitchTab(tab string) error {
	t := Tab(tab)
	if t != TabColor && t != TabImage {
		return core.Invalid("Unknown tab", fmt.Errorf("tab %q", tab))
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.actionFor(ActionCustomizeBackground); err != nil {
		return err
	}
	c.state.UI.Scratch.Tab = t
	return nil
}

// RemoveImage clears both the selected image and colour.
func (c *Controller) RemoveImage() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.actionFor(ActionCustomizeBackground); err != nil {
		return err
	}
	c.state.UI.Scratch.SelectedImage = ""
	c.state.UI.Scratch.SelectedColor = ""
	return nil
}
