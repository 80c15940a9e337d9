package models

import (
	"context"

	"github.com/atelierfoods/supply_backend/utils"
)

type Resource interface {
	GetBusinessId() string
}

// first find in redis, then in db, using ctx's business_id in WHERE, cache result
// (may return RecordNotFound error)
func GetResource[T Resource](ctx context.Context, id int, associations ...string) (*T, error) {

	businessId, ok := utils.GetBusinessIdFromContext(ctx)
	if !ok || businessId == "" {
		return nil, utils.NewValidationError("business id is required")
	}
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		result, err = utils.FetchModel[T](ctx, businessId, id, associations...)
		if err != nil {
			return nil, err
		}

		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	} else {
		// check if business ids match
		if (*result).GetBusinessId() != businessId {
			return nil, utils.NewNotFoundError("cannot access resource owned by other business")
		}
	}

	return result, nil
}
