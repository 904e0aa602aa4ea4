package rekognition

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/sparkmeet/sparkmeet-api/internal/config"
)

// Detector reports whether an image contains at least one human face,
// via AWS Rekognition DetectFaces.
type Detector struct {
	client *rekognition.Client
}

func NewDetector(cfg *config.Config) (*Detector, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &Detector{client: rekognition.NewFromConfig(awsCfg)}, nil
}

// Detect returns true when the image bytes contain at least one face.
func (d *Detector) Detect(ctx context.Context, image []byte) (bool, error) {
	out, err := d.client.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return false, fmt.Errorf("detect faces: %w", err)
	}
	return len(out.FaceDetails) > 0, nil
}
