package runtime

import (
	"context"
	"fmt"

	"streetbuilder/internal/app/ports"
	"streetbuilder/internal/domain/robot"
	"streetbuilder/internal/domain/world"
)

// Move steps the robot onto a neighbouring tile, paying the tile's walk cost.
func (w *World) Move(ctx context.Context, dir world.Direction) error {
	if !dir.Valid() {
		return fmt.Errorf("move %q: invalid direction", dir)
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	from := w.robot.Coordinate
	to := from.Step(dir)
	t, err := w.tileLocked(ctx, to)
	if err != nil {
		return fmt.Errorf("move %s: %w", dir, err)
	}
	if !t.Passable {
		return fmt.Errorf("move %s to %s: %w", dir, to, ports.ErrBlocked)
	}
	if err := w.spendLocked(t.Kind.WalkCost()); err != nil {
		return fmt.Errorf("move %s: %w", dir, err)
	}
	w.robot.Coordinate = to
	w.emitLocked(world.EventMoved, map[string]any{"from": from, "to": to, "direction": string(dir)})
	return nil
}

// Teleport jumps between two teleport tiles. Both ends must be known.
func (w *World) Teleport(ctx context.Context, to world.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	from := w.robot.Coordinate
	src, err := w.tileLocked(ctx, from)
	if err != nil {
		return fmt.Errorf("teleport: %w", err)
	}
	dst, ok := w.known.At(to)
	if src.Kind != world.TileTeleport || !ok || dst.Kind != world.TileTeleport {
		return fmt.Errorf("teleport %s -> %s: %w", from, to, ports.ErrBlocked)
	}
	if err := w.spendLocked(robot.TeleportCost); err != nil {
		return fmt.Errorf("teleport: %w", err)
	}
	w.robot.Coordinate = to
	w.emitLocked(world.EventTeleported, map[string]any{"from": from, "to": to})
	return nil
}

// Pickup destroys the content of a tile on or next to the robot and stores
// as much of it as fits in the backpack. It returns the amount stored.
func (w *World) Pickup(ctx context.Context, p world.Point) (world.Content, int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.reachableLocked(ctx, p)
	if err != nil {
		return world.ContentNone, 0, err
	}
	if t.Content == world.ContentNone {
		return world.ContentNone, 0, nil
	}
	if w.robot.Backpack.Free() == 0 {
		return t.Content, 0, nil
	}
	if err := w.spendLocked(robot.DestroyCost); err != nil {
		return t.Content, 0, err
	}
	amount := t.Amount
	if amount < 1 {
		amount = 1
	}
	content := t.Content
	stored := w.robot.Backpack.Add(content, amount)
	w.emitLocked(world.EventAddedToBackpack, map[string]any{"content": string(content), "amount": stored})

	if stored < amount {
		t.Amount = amount - stored
	} else {
		t.Content, t.Amount = world.ContentNone, 0
		t.Passable = t.Kind.Walkable()
	}
	w.updateTileLocked(ctx, t)
	w.emitLocked(world.EventTileContentUpdated, map[string]any{"at": t.Point(), "content": string(t.Content)})
	return content, stored, nil
}

// ClearContent destroys whatever stands on a reachable tile without keeping it.
func (w *World) ClearContent(ctx context.Context, p world.Point) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.reachableLocked(ctx, p)
	if err != nil {
		return err
	}
	if t.Content == world.ContentNone {
		return nil
	}
	if err := w.spendLocked(robot.DestroyCost); err != nil {
		return err
	}
	t.Content, t.Amount = world.ContentNone, 0
	t.Passable = t.Kind.Walkable()
	w.updateTileLocked(ctx, t)
	w.emitLocked(world.EventTileContentUpdated, map[string]any{"at": t.Point(), "content": ""})
	return nil
}

// PutStreet turns a reachable free tile into street, using one unit of
// material from the backpack.
func (w *World) PutStreet(ctx context.Context, p world.Point, material world.Content) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	t, err := w.reachableLocked(ctx, p)
	if err != nil {
		return err
	}
	if t.IsStreet() {
		return nil
	}
	if !t.Buildable() || t.Content.Obstacle() {
		return fmt.Errorf("put street at %s: %w", p, ports.ErrBlocked)
	}
	if w.robot.Backpack.Count(material) < 1 {
		return fmt.Errorf("put street at %s: %w", p, ports.ErrMaterialShortage)
	}
	if err := w.spendLocked(robot.PutCost); err != nil {
		return err
	}
	w.robot.Backpack.Remove(material, 1)
	w.emitLocked(world.EventRemovedFromBackpack, map[string]any{"content": string(material), "amount": 1})
	t.Kind = world.TileStreet
	t.Passable = true
	w.updateTileLocked(ctx, t)
	w.emitLocked(world.EventTileKindUpdated, map[string]any{"at": t.Point(), "kind": string(t.Kind)})
	return nil
}

func (w *World) reachableLocked(ctx context.Context, p world.Point) (world.Tile, error) {
	pos := w.robot.Coordinate
	if p != pos && !p.Adjacent(pos) {
		return world.Tile{}, fmt.Errorf("tile %s not reachable from %s: %w", p, pos, ports.ErrUnreachable)
	}
	return w.tileLocked(ctx, p)
}
