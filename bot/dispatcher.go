package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"rumia/bot/common"
	"rumia/repository"
	"rumia/service"

	"github.com/bwmarrin/discordgo"
)

// cooldownKey identifies one user's use of one command
type cooldownKey struct {
	userID  string
	command string
}

// Dispatcher routes interactions to registered commands, enforcing permission
// and cooldown guards before any business logic runs. Handler faults are
// contained here; they never propagate to the gateway.
type Dispatcher struct {
	mu         sync.Mutex
	commands   map[string]*common.Command
	components []common.Component
	cooldowns  map[cooldownKey]time.Time
	now        func() time.Time
}

// NewDispatcher creates an empty dispatcher
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		commands:  make(map[string]*common.Command),
		cooldowns: make(map[cooldownKey]time.Time),
		now:       time.Now,
	}
}

// Register adds commands to the dispatch table
func (d *Dispatcher) Register(commands ...*common.Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, cmd := range commands {
		d.commands[cmd.Definition.Name] = cmd
	}
}

// RegisterComponent adds a button-interaction route matched by custom ID prefix
func (d *Dispatcher) RegisterComponent(components ...common.Component) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.components = append(d.components, components...)
}

// Definitions returns every registered slash-command definition for
// registration with the platform
func (d *Dispatcher) Definitions() []*discordgo.ApplicationCommand {
	d.mu.Lock()
	defer d.mu.Unlock()

	defs := make([]*discordgo.ApplicationCommand, 0, len(d.commands))
	for _, cmd := range d.commands {
		defs = append(defs, cmd.Definition)
	}
	return defs
}

// checkCooldown enforces the per-user-per-command interval. On success the
// last-invocation timestamp is updated inside the same critical section, so
// concurrent invocations cannot both pass.
func (d *Dispatcher) checkCooldown(userID string, cmd *common.Command) error {
	if cmd.Cooldown == 0 {
		return nil
	}

	key := cooldownKey{userID: userID, command: cmd.Definition.Name}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if last, ok := d.cooldowns[key]; ok {
		if elapsed := now.Sub(last); elapsed < cmd.Cooldown {
			return &common.CooldownError{Remaining: cmd.Cooldown - elapsed}
		}
	}
	d.cooldowns[key] = now
	return nil
}

// checkPermissions verifies the invoking member holds the entire required bitmask
func checkPermissions(i *discordgo.InteractionCreate, required int64) error {
	if required == 0 {
		return nil
	}
	if i.Member == nil || i.Member.Permissions&required != required {
		return common.ErrForbidden
	}
	return nil
}

// DispatchCommand runs the guard chain and handler for a slash command.
// Every outcome produces exactly one response through the responder.
func (d *Dispatcher) DispatchCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	name := i.ApplicationCommandData().Name

	d.mu.Lock()
	cmd, ok := d.commands[name]
	d.mu.Unlock()
	if !ok {
		return
	}

	r := common.NewResponder(s, i)
	user := common.InteractionUser(i)

	if err := checkPermissions(i, cmd.Permissions); err != nil {
		commandsTotal.WithLabelValues(name, "forbidden").Inc()
		d.reply(r, "🚫 "+err.Error())
		return
	}

	if err := d.checkCooldown(user.ID, cmd); err != nil {
		commandsTotal.WithLabelValues(name, "cooldown").Inc()
		d.reply(r, "⏳ "+err.Error())
		return
	}

	d.invoke(ctx, s, i, r, name, cmd.Handler)
}

// DispatchComponent routes a button click to the component handler whose
// prefix matches its custom ID
func (d *Dispatcher) DispatchComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	customID := i.MessageComponentData().CustomID

	d.mu.Lock()
	var handler common.HandlerFunc
	var name string
	for _, c := range d.components {
		if strings.HasPrefix(customID, c.Prefix) {
			handler = c.Handler
			name = c.Prefix
			break
		}
	}
	d.mu.Unlock()

	if handler == nil {
		return
	}

	r := common.NewResponder(s, i)
	d.invoke(ctx, s, i, r, name, handler)
}

// invoke runs a handler behind the fault boundary and maps its outcome to a
// single user-visible response
func (d *Dispatcher) invoke(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, r *common.Responder, name string, handler common.HandlerFunc) {
	defer func() {
		if rec := recover(); rec != nil {
			commandsTotal.WithLabelValues(name, "panic").Inc()
			log.WithFields(log.Fields{
				"command": name,
				"user":    common.InteractionUser(i).ID,
				"guild":   i.GuildID,
				"panic":   rec,
			}).Error("Command handler panicked")
			d.reply(r, "😢 Something went wrong. Please try again later.")
		}
	}()

	err := handler(ctx, s, i, r)
	if err == nil {
		commandsTotal.WithLabelValues(name, "ok").Inc()
		return
	}

	var userErr *common.UserError
	switch {
	case errors.As(err, &userErr):
		commandsTotal.WithLabelValues(name, "rejected").Inc()
		d.reply(r, "❌ "+userErr.Message)
	case errors.Is(err, repository.ErrInsufficientFunds):
		commandsTotal.WithLabelValues(name, "rejected").Inc()
		d.reply(r, "❌ 現金が足りません。")
	case errors.Is(err, repository.ErrDebtLimitExceeded):
		commandsTotal.WithLabelValues(name, "rejected").Inc()
		d.reply(r, "❌ 借金限度額を超えています。")
	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrSelfTransfer),
		errors.Is(err, service.ErrUnknownJob),
		errors.Is(err, service.ErrNoDebt),
		errors.Is(err, service.ErrMinimumBet):
		commandsTotal.WithLabelValues(name, "rejected").Inc()
		d.reply(r, "❌ "+err.Error())
	default:
		commandsTotal.WithLabelValues(name, "error").Inc()
		log.WithFields(log.Fields{
			"command": name,
			"user":    common.InteractionUser(i).ID,
			"guild":   i.GuildID,
		}).WithError(err).Error("Command handler failed")
		d.reply(r, "😢 Something went wrong. Please try again later.")
	}
}

// reply sends an ephemeral message unless the handler already responded
func (d *Dispatcher) reply(r *common.Responder, content string) {
	if r.Responded() {
		return
	}
	if err := r.RespondText(content, true); err != nil && !errors.Is(err, common.ErrAlreadyResponded) {
		log.WithError(err).Error("Failed to send dispatcher reply")
	}
}

// ResetCooldown clears one user's cooldown for a command; used by tests
func (d *Dispatcher) ResetCooldown(userID, command string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.cooldowns, cooldownKey{userID: userID, command: command})
}
