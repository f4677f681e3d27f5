package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/sentra-id/identity-api/internal/core/domain"
	"github.com/sentra-id/identity-api/internal/core/ports"
)

const rolesCollection = "roles"

type RoleRepository struct {
	coll *mongo.Collection
}

func NewRoleRepository(db *mongo.Database) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection)}
}

type mongoRole struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Name        string             `bson:"name"`
	Code        string             `bson:"code"`
	Description string             `bson:"description,omitempty"`
	IsActive    bool               `bson:"is_active"`
	CreatedAt   time.Time          `bson:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at"`
}

func (mr *mongoRole) toDomain() domain.Role {
	return domain.Role{
		ID:          mr.ID.Hex(),
		Name:        mr.Name,
		Code:        mr.Code,
		Description: mr.Description,
		IsActive:    mr.IsActive,
		CreatedAt:   mr.CreatedAt.UTC(),
		UpdatedAt:   mr.UpdatedAt.UTC(),
	}
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoRole{
		Name:        role.Name,
		Code:        role.Code,
		Description: role.Description,
		IsActive:    role.IsActive,
		CreatedAt:   role.CreatedAt,
		UpdatedAt:   role.UpdatedAt,
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, roleDuplicateError(err)
		}
		return nil, fmt.Errorf("insert role: %w", err)
	}

	created := *role
	created.ID = res.InsertedID.(primitive.ObjectID).Hex()
	return &created, nil
}

func (r *RoleRepository) FindByID(ctx context.Context, id string) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *RoleRepository) FindByCode(ctx context.Context, code string) (*domain.Role, error) {
	return r.findOne(ctx, bson.M{"code": code})
}

func (r *RoleRepository) List(ctx context.Context, activeOnly bool) ([]domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if activeOnly {
		filter["is_active"] = true
	}

	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer cursor.Close(ctx)

	roles := make([]domain.Role, 0)
	for cursor.Next(ctx) {
		var mr mongoRole
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode role: %w", err)
		}
		roles = append(roles, mr.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return roles, nil
}

func (r *RoleRepository) Update(ctx context.Context, id string, upd ports.RoleUpdate) (*domain.Role, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrRoleNotFound
	}

	set := bson.M{"updated_at": time.Now().UTC()}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.Description != nil {
		set["description"] = *upd.Description
	}
	if upd.IsActive != nil {
		set["is_active"] = *upd.IsActive
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	err = r.coll.FindOneAndUpdate(
		ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&mr)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRoleNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, roleDuplicateError(err)
		}
		return nil, fmt.Errorf("update role: %w", err)
	}
	role := mr.toDomain()
	return &role, nil
}

func (r *RoleRepository) Deactivate(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrRoleNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.UpdateByID(ctx, oid, bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("deactivate role: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrRoleNotFound
	}
	return nil
}

func (r *RoleRepository) findOne(ctx context.Context, filter bson.M) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var mr mongoRole
	if err := r.coll.FindOne(ctx, filter).Decode(&mr); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, domain.ErrRoleNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	role := mr.toDomain()
	return &role, nil
}

func roleDuplicateError(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "code"):
		return domain.ErrRoleCodeTaken
	default:
		return domain.ErrRoleNameTaken
	}
}

func ensureRoleIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(rolesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	return err
}

var _ ports.RoleRepository = (*RoleRepository)(nil)
