package http

import (
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/dynamo"
	jwtinfra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/jwt"
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/rekognition"
	redisinfra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/redis"
	s3infra "github.com/sparkmeet/sparkmeet-api/internal/infrastructure/s3"
	"github.com/sparkmeet/sparkmeet-api/internal/infrastructure/sns"
)

// Deps holds all infrastructure dependencies for the router. Everything is
// constructed in main and passed in explicitly; nothing is looked up from
// package-level state.
type Deps struct {
	Cache        *redisinfra.Cache
	UserRepo     *dynamo.UserRepo
	ProfileRepo  *dynamo.ProfileRepo
	S3Store      *s3infra.Store
	SMSSender    sns.SMSSender
	FaceDetector *rekognition.Detector
	JWTProvider  *jwtinfra.Provider
}
