package app

import (
	"context"

	catalogdomain "agri_market_service/internal/catalog/domain"
	"agri_market_service/internal/chat/domain"
	"agri_market_service/internal/chat/repository"
	"agri_market_service/pkg"
	errprocess "agri_market_service/pkg/err"
	"agri_market_service/pkg/logger"

	"go.uber.org/zap"
)

// ProductDirectory batch lookup into the listing catalog.
type ProductDirectory interface {
	FindByIDs(ctx context.Context, ids []string) (map[string]catalogdomain.Product, error)
}

// MemberDirectory batch lookup of member display names.
type MemberDirectory interface {
	DisplayNames(ctx context.Context, ids []string) (map[string]string, error)
}

// ActiveChatsUseCase assembles a member's conversation list by joining
// rooms against the catalog and member directories.
type ActiveChatsUseCase struct {
	roomRepo repository.RoomRepository
	products ProductDirectory
	members  MemberDirectory
}

// NewActiveChatsUseCase init the aggregator.
func NewActiveChatsUseCase(
	roomRepo repository.RoomRepository,
	products ProductDirectory,
	members MemberDirectory,
) *ActiveChatsUseCase {
	return &ActiveChatsUseCase{
		roomRepo: roomRepo,
		products: products,
		members:  members,
	}
}

// Execute lists the member's active conversations, most recently updated
// first. Rooms whose product or peer can no longer be resolved still
// appear, with the missing fields blank, a deleted listing must not hide
// the conversation history.
func (uc *ActiveChatsUseCase) Execute(ctx context.Context, memberID string) ([]domain.ActiveChatSummary, error) {
	rooms, err := uc.roomRepo.FindByParticipant(ctx, memberID)
	if err != nil {
		return nil, errprocess.Persistence("list rooms failed", err)
	}
	if len(rooms) == 0 {
		return []domain.ActiveChatSummary{}, nil
	}

	productIDs := make([]string, 0, len(rooms))
	peerIDs := make([]string, 0, len(rooms))
	for _, room := range rooms {
		productIDs = append(productIDs, room.ProductID)
		for _, p := range room.Participants {
			if p != memberID {
				peerIDs = append(peerIDs, p)
			}
		}
	}

	products, err := uc.products.FindByIDs(ctx, pkg.Dedup(productIDs))
	if err != nil {
		return nil, errprocess.Persistence("batch product lookup failed", err)
	}

	names, err := uc.members.DisplayNames(ctx, pkg.Dedup(peerIDs))
	if err != nil {
		// Names are decoration, the list still works without them.
		logger.Log.Warn("display name lookup failed", zap.Error(err))
		names = map[string]string{}
	}

	unread, err := uc.roomRepo.CountUnreadByRoom(ctx, memberID)
	if err != nil {
		return nil, errprocess.Persistence("unread aggregation failed", err)
	}
	unreadByRoom := make(map[string]int, len(unread))
	for _, u := range unread {
		unreadByRoom[u.RoomID] = u.UnreadCount
	}

	summaries := make([]domain.ActiveChatSummary, 0, len(rooms))
	for _, room := range rooms {
		s := domain.ActiveChatSummary{
			RoomID:        room.ID,
			ProductID:     room.ProductID,
			Participants:  room.Participants,
			UnreadCount:   unreadByRoom[room.ID],
			LastUpdatedAt: room.UpdatedAt,
		}

		if p, ok := products[room.ProductID]; ok {
			s.ProductName = p.Name
			s.ProductCategory = p.Category
			s.ProductImage = p.Image
			s.ProductPrice = p.Price
			s.ProductUnit = p.Unit
			s.ProductQuantity = p.Quantity
			s.ProductMinOrder = p.MinOrder
		}

		for _, participant := range room.Participants {
			if participant != memberID {
				s.PeerID = participant
				s.PeerName = names[participant]
				break
			}
		}

		if len(room.Messages) > 0 {
			last := room.Messages[len(room.Messages)-1]
			s.LastMessage = last.Body
			s.LastSenderID = last.SenderID
		}

		summaries = append(summaries, s)
	}

	return summaries, nil
}
