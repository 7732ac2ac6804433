package access

import (
	"context"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/blackinbot/backend/internal/messages"
	"github.com/blackinbot/backend/internal/telegram"
	"github.com/blackinbot/backend/types"
)

// Result summarizes one sweep over expired paid sales.
type Result struct {
	Status    string `json:"status"`
	Processed int    `json:"processed"`
	Errors    int    `json:"errors"`
	Total     int    `json:"total"`
}

// Sweeper revokes access for paid sales whose expiry date has passed. It can
// run on a ticker or be triggered once through Run.
type Sweeper struct {
	store   types.Store
	clients telegram.Factory

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
}

func NewSweeper(s types.Store, clients telegram.Factory) *Sweeper {
	ctx, cancel := context.WithCancel(context.Background())
	return &Sweeper{
		store:   s,
		clients: clients,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start runs the sweep every interval until Stop is called.
func (s *Sweeper) Start(interval time.Duration) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Access sweeper started, interval %s", interval)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				res := s.Run(s.ctx)
				if res.Total > 0 {
					log.Printf("Access sweep: processed=%d errors=%d total=%d", res.Processed, res.Errors, res.Total)
				}
			}
		}
	}()
}

func (s *Sweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	log.Println("Stopping access sweeper...")
	s.cancel()
	s.wg.Wait()
	log.Println("Access sweeper stopped")
}

// Run expires every paid sale past its expiry date: remove the member from
// the VIP chat, mark the sale expired, notify the buyer. A removal failure
// leaves the sale paid so the next sweep retries it.
func (s *Sweeper) Run(ctx context.Context) Result {
	res := Result{Status: "ok"}

	sales, err := s.store.ListExpiredSales(time.Now())
	if err != nil {
		log.Printf("Access sweep: listing expired sales: %v", err)
		res.Status = "error"
		return res
	}
	res.Total = len(sales)

	for _, sale := range sales {
		bot, err := s.store.GetBotByID(sale.BotID)
		if err != nil {
			log.Printf("Access sweep: sale %s: bot lookup failed: %v", sale.ID, err)
			res.Errors++
			continue
		}
		if bot.VIPChatID == "" {
			continue
		}

		client, err := s.clients(bot.BotToken)
		if err != nil {
			log.Printf("Access sweep: sale %s: telegram client: %v", sale.ID, err)
			res.Errors++
			continue
		}
		userID, err := strconv.ParseInt(sale.UserTelegramID, 10, 64)
		if err != nil {
			log.Printf("Access sweep: sale %s: bad telegram user id %q", sale.ID, sale.UserTelegramID)
			res.Errors++
			continue
		}

		if err := client.BanChatMember(ctx, bot.VIPChatID, userID); err != nil {
			log.Printf("Access sweep: sale %s: remove from chat %s failed: %v", sale.ID, bot.VIPChatID, err)
			res.Errors++
			continue
		}
		if bot.VIPChatKind == types.ChatKindGroup {
			// Unban so the user can be re-added after renewing.
			if err := client.UnbanChatMember(ctx, bot.VIPChatID, userID); err != nil {
				log.Printf("Access sweep: sale %s: unban failed: %v", sale.ID, err)
			}
		}

		sale.Status = types.SaleExpired
		if err := s.store.UpdateSale(sale); err != nil {
			log.Printf("Access sweep: sale %s: update failed: %v", sale.ID, err)
			res.Errors++
			continue
		}

		if err := client.SendMessage(ctx, userID, messages.AccessExpired(string(bot.VIPChatKind)), nil); err != nil {
			log.Printf("Access sweep: sale %s: notify failed: %v", sale.ID, err)
		}
		res.Processed++
	}

	return res
}
