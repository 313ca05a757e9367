package dynamo

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kusina-api/internal/domain"
)

// conflictOnCondition maps a failed attribute_not_exists guard to domain.ErrConflict.
func conflictOnCondition(err error, msg string) error {
	if isConditionFailed(err) {
		return fmt.Errorf("%s: %w", msg, domain.ErrConflict)
	}
	return err
}

// notFoundOnCondition maps a failed attribute_exists guard to domain.ErrNotFound.
func notFoundOnCondition(err error, msg string) error {
	if isConditionFailed(err) {
		return fmt.Errorf("%s: %w", msg, domain.ErrNotFound)
	}
	return err
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return err != nil && errors.As(err, &ccf)
}
