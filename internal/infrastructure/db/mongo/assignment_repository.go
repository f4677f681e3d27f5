package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

const assignmentsCollection = "role_assignments"

type AssignmentRepository struct {
	coll *mongo.Collection
}

func NewAssignmentRepository(db *mongo.Database) *AssignmentRepository {
	return &AssignmentRepository{coll: db.Collection(assignmentsCollection)}
}

type mongoAssignment struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	UserID    primitive.ObjectID `bson:"user_id"`
	RoleID    primitive.ObjectID `bson:"role_id"`
	IsActive  bool               `bson:"is_active"`
	CreatedAt time.Time          `bson:"created_at"`
}

func (ma *mongoAssignment) toDomain() domain.RoleAssignment {
	return domain.RoleAssignment{
		ID:        ma.ID.Hex(),
		UserID:    ma.UserID.Hex(),
		RoleID:    ma.RoleID.Hex(),
		IsActive:  ma.IsActive,
		CreatedAt: ma.CreatedAt.UTC(),
	}
}

// Upsert activates the (user, role) assignment in a single atomic
// conditional write. The unique compound index makes two concurrent
// grants of the same pair converge on one row; UpsertedCount tells the
// caller whether this call created it.
func (r *AssignmentRepository) Upsert(ctx context.Context, userID, roleID string) (*domain.RoleAssignment, bool, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, false, domain.ErrUserNotFound
	}
	roleOID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return nil, false, domain.ErrRoleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"user_id": userOID, "role_id": roleOID}
	update := bson.M{
		"$set":         bson.M{"is_active": true},
		"$setOnInsert": bson.M{"created_at": time.Now().UTC()},
	}

	res, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return nil, false, fmt.Errorf("upsert assignment: %w", err)
	}
	created := res.UpsertedCount > 0

	var ma mongoAssignment
	if err := r.coll.FindOne(ctx, filter).Decode(&ma); err != nil {
		return nil, false, fmt.Errorf("find assignment: %w", err)
	}
	assignment := ma.toDomain()
	return &assignment, created, nil
}

func (r *AssignmentRepository) Deactivate(ctx context.Context, userID, roleID string) error {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrAssignmentNotFound
	}
	roleOID, err := primitive.ObjectIDFromHex(roleID)
	if err != nil {
		return domain.ErrAssignmentNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateOne(
		ctx,
		bson.M{"user_id": userOID, "role_id": roleOID},
		bson.M{"$set": bson.M{"is_active": false}},
	)
	if err != nil {
		return fmt.Errorf("deactivate assignment: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrAssignmentNotFound
	}
	return nil
}

// assignmentWithRole is the shape produced by the $lookup pipelines.
type assignmentWithRole struct {
	mongoAssignment `bson:",inline"`
	Role            mongoRole `bson:"role"`
}

func (r *AssignmentRepository) ListActiveByUser(ctx context.Context, userID string) ([]domain.GrantedRole, error) {
	rows, err := r.joinRoles(ctx, userID, false)
	if err != nil {
		return nil, err
	}
	granted := make([]domain.GrantedRole, 0, len(rows))
	for _, row := range rows {
		granted = append(granted, domain.GrantedRole{
			Role:       row.Role.toDomain(),
			Assignment: row.mongoAssignment.toDomain(),
		})
	}
	return granted, nil
}

func (r *AssignmentRepository) EffectiveRoles(ctx context.Context, userID string) ([]domain.Role, error) {
	rows, err := r.joinRoles(ctx, userID, true)
	if err != nil {
		return nil, err
	}
	roles := make([]domain.Role, 0, len(rows))
	for _, row := range rows {
		roles = append(roles, row.Role.toDomain())
	}
	return roles, nil
}

// joinRoles runs the ledger-to-catalog join: active assignments for
// the user, each unwound with its role document. With activeRolesOnly
// the role's own flag is applied too, which is the effective-role
// (joint-flag) query.
func (r *AssignmentRepository) joinRoles(ctx context.Context, userID string, activeRolesOnly bool) ([]assignmentWithRole, error) {
	userOID, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// An unparseable id cannot reference any assignment.
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"user_id": userOID, "is_active": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         rolesCollection,
			"localField":   "role_id",
			"foreignField": "_id",
			"as":           "role",
		}}},
		{{Key: "$unwind", Value: "$role"}},
	}
	if activeRolesOnly {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"role.is_active": true}}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$sort", Value: bson.M{"created_at": -1}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate assignments: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []assignmentWithRole
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	return rows, nil
}

func ensureAssignmentIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(assignmentsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "role_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "is_active", Value: 1}},
		},
	})
	return err
}

var _ ports.AssignmentRepository = (*AssignmentRepository)(nil)
