package trains

import (
	"context"

	"github.com/google/uuid"
	"github.com/velren/railbook/internal/domain"
	"github.com/velren/railbook/internal/repository"
)

type TrainUseCase interface {
	List(ctx context.Context) ([]domain.Train, error)
	Search(ctx context.Context, source, destination string) ([]domain.Train, error)
	GetByID(ctx context.Context, id string) (*domain.Train, error)
	Create(ctx context.Context, input CreateTrainInput) (*domain.Train, error)
	Update(ctx context.Context, id string, input UpdateTrainInput) (*domain.Train, error)
	Delete(ctx context.Context, id string) error
}

type Cache interface {
	GetTrains(ctx context.Context) ([]domain.Train, error)
	SetTrains(ctx context.Context, trains []domain.Train) error
	InvalidateTrains(ctx context.Context) error
}

type TrainService struct {
	repo  repository.TrainRepository
	cache Cache
}

func NewTrainService(repo repository.TrainRepository, cache Cache) *TrainService {
	return &TrainService{repo: repo, cache: cache}
}

type CreateTrainInput struct {
	Number         string `json:"number"`
	Name           string `json:"name"`
	Source         string `json:"source"`
	Destination    string `json:"destination"`
	DepartureTime  string `json:"departureTime"`
	TotalSeats     int    `json:"totalSeats"`
	AvailableSeats int    `json:"availableSeats"`
	Price          int64  `json:"price"`
}

// UpdateTrainInput carries a partial edit; nil fields keep their current
// value. The merged record is re-validated and re-clamped before saving.
type UpdateTrainInput struct {
	Number         *string `json:"number"`
	Name           *string `json:"name"`
	Source         *string `json:"source"`
	Destination    *string `json:"destination"`
	DepartureTime  *string `json:"departureTime"`
	TotalSeats     *int    `json:"totalSeats"`
	AvailableSeats *int    `json:"availableSeats"`
	Price          *int64  `json:"price"`
}

func (s *TrainService) List(ctx context.Context) ([]domain.Train, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTrains(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	trains, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetTrains(ctx, trains)
	}
	return trains, nil
}

func (s *TrainService) Search(ctx context.Context, source, destination string) ([]domain.Train, error) {
	if source == "" && destination == "" {
		return s.List(ctx)
	}
	return s.repo.Search(ctx, source, destination)
}

func (s *TrainService) GetByID(ctx context.Context, id string) (*domain.Train, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TrainService) Create(ctx context.Context, input CreateTrainInput) (*domain.Train, error) {
	train := &domain.Train{
		ID:             uuid.NewString(),
		Number:         input.Number,
		Name:           input.Name,
		Source:         input.Source,
		Destination:    input.Destination,
		DepartureTime:  input.DepartureTime,
		TotalSeats:     input.TotalSeats,
		AvailableSeats: input.AvailableSeats,
		Price:          input.Price,
	}
	if err := validateTrain(train); err != nil {
		return nil, err
	}
	train.ClampAvailable()

	if err := s.repo.Create(ctx, train); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return train, nil
}

func (s *TrainService) Update(ctx context.Context, id string, input UpdateTrainInput) (*domain.Train, error) {
	train, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Number != nil {
		train.Number = *input.Number
	}
	if input.Name != nil {
		train.Name = *input.Name
	}
	if input.Source != nil {
		train.Source = *input.Source
	}
	if input.Destination != nil {
		train.Destination = *input.Destination
	}
	if input.DepartureTime != nil {
		train.DepartureTime = *input.DepartureTime
	}
	if input.TotalSeats != nil {
		train.TotalSeats = *input.TotalSeats
	}
	if input.AvailableSeats != nil {
		train.AvailableSeats = *input.AvailableSeats
	}
	if input.Price != nil {
		train.Price = *input.Price
	}

	if err := validateTrain(train); err != nil {
		return nil, err
	}
	train.ClampAvailable()

	if err := s.repo.Update(ctx, train); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return train, nil
}

func (s *TrainService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *TrainService) invalidate(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateTrains(ctx)
	}
}

func validateTrain(t *domain.Train) error {
	switch {
	case t.Number == "":
		return domain.ValidationError{Field: "number", Msg: "is required"}
	case t.Name == "":
		return domain.ValidationError{Field: "name", Msg: "is required"}
	case t.Source == "":
		return domain.ValidationError{Field: "source", Msg: "is required"}
	case t.Destination == "":
		return domain.ValidationError{Field: "destination", Msg: "is required"}
	case t.DepartureTime == "":
		return domain.ValidationError{Field: "departureTime", Msg: "is required"}
	case t.TotalSeats < 1:
		return domain.ValidationError{Field: "totalSeats", Msg: "must be at least 1"}
	case t.AvailableSeats < 0:
		return domain.ValidationError{Field: "availableSeats", Msg: "must not be negative"}
	case t.Price < 1:
		return domain.ValidationError{Field: "price", Msg: "must be at least 1"}
	}
	return nil
}

var _ TrainUseCase = (*TrainService)(nil)
